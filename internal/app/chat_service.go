package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/metric"

	"github.com/jsamuelsen11/crm-chat-relay/internal/app/fanout"
	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/chat"
	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/crm"
	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/intent"
	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/telemetry"
	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/textnorm"
	"github.com/jsamuelsen11/crm-chat-relay/internal/ports"
)

// Compile-time check that ChatService implements ports.ChatService.
var _ ports.ChatService = (*ChatService)(nil)

// Reply texts shown in the CRM chat widget.
const (
	replyNoMessage   = "⚠️ No recibí mensaje."
	replyNoIdentity  = "⚠️ Necesito saber quién eres. Abre el chat dentro de Bitrix para autoidentificarte."
	replyNoAnswer    = "No tengo respuesta."
	replyBlockedFmt  = "⚠️ La respuesta fue bloqueada por la política (%s)."
	replyLLMErrorFmt = "❌ Error con Gemini: %v"

	tasksHeader = "📝 Tareas asignadas:\n\n\n- "
	tasksEmpty  = "🗒️ No encontré tareas asignadas.\n\n\n"
	leadsHeader = "📋 Leads abiertos:\n\n\n- "
	leadsEmpty  = "📋 No encontré leads abiertos.\n\n\n"
	dealsHeader = "💼 Notificaciones:\n\n"
	dealsEmpty  = "No encontré Notificaciones."

	pendingHeader     = "📝 Pendientes asignados:\n\n\n"
	pendingTasks      = "🗒️ Tareas:\n- "
	pendingNoTasks    = "🗒️ No tienes tareas asignadas.\n\n\n"
	pendingLeads      = "📋 Leads abiertos:\n\n\n- "
	pendingNoLeads    = "📋 No tienes leads abiertos.\n\n\n"
	listSeparator     = "\n\n\n- "
	listTrailer       = "\n\n\n"
	pendingMaxWorkers = 2
)

// ChatService implements ports.ChatService. It classifies each message
// and answers it from the CRM or the language model. It is the only place
// where errors become reply text.
type ChatService struct {
	queries      ports.QueryService
	directory    ports.DirectoryService
	model        ports.LanguageModel
	metrics      *telemetry.Metrics
	displayLimit int
	logger       *slog.Logger
}

// NewChatService creates a ChatService. metrics may be nil; a nil logger
// discards output.
func NewChatService(
	queries ports.QueryService,
	directory ports.DirectoryService,
	model ports.LanguageModel,
	metrics *telemetry.Metrics,
	displayLimit int,
	logger *slog.Logger,
) *ChatService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ChatService{
		queries:      queries,
		directory:    directory,
		model:        model,
		metrics:      metrics,
		displayLimit: displayLimit,
		logger:       logger,
	}
}

// Reply returns the answer to msg. It never fails: every error is rendered
// as a reply.
//
// An empty message is answered without any remote call. When the caller id
// is missing and per-request credentials are present, the caller is looked
// up first; if the id is still unknown the reply asks the user to open the
// chat inside the portal.
func (s *ChatService) Reply(ctx context.Context, msg chat.Message) string {
	if msg.Empty() {
		return replyNoMessage
	}

	text := strings.TrimSpace(msg.Text)
	userID := msg.UserID
	if userID == "" && msg.Credentials.PerRequest() {
		userID = s.directory.Identify(ctx, msg.Credentials)
	}
	if userID == "" {
		return replyNoIdentity
	}

	in := intent.Classify(textnorm.Normalize(text))
	s.countIntent(ctx, in)
	s.logger.InfoContext(ctx, "chat message classified",
		slog.String("intent", in.String()),
		slog.String("user_id", userID),
	)

	creds := msg.Credentials
	switch in {
	case intent.Tasks:
		return s.replyTasks(ctx, userID, creds)
	case intent.OpenLeads:
		return s.replyLeads(ctx, userID, creds)
	case intent.Notifications:
		return s.replyDeals(ctx, userID, creds)
	case intent.Pending:
		return s.replyPending(ctx, userID, creds)
	default:
		return s.replyModel(ctx, text)
	}
}

func (s *ChatService) replyTasks(ctx context.Context, userID string, creds crm.Credentials) string {
	tasks, err := s.queries.TasksByAssignee(ctx, userID, s.displayLimit, creds)
	if err != nil {
		return fmt.Sprintf("❌ Error consultando tareas: %v", err)
	}
	if len(tasks) == 0 {
		return tasksEmpty
	}
	return tasksHeader + strings.Join(tasks, listSeparator) + listTrailer
}

func (s *ChatService) replyLeads(ctx context.Context, userID string, creds crm.Credentials) string {
	leads, err := s.queries.OpenLeadsByOwner(ctx, userID, s.displayLimit, creds)
	if err != nil {
		return fmt.Sprintf("❌ Error consultando leads: %v", err)
	}
	if len(leads) == 0 {
		return leadsEmpty
	}
	return leadsHeader + strings.Join(leads, listSeparator) + listTrailer
}

func (s *ChatService) replyDeals(ctx context.Context, userID string, creds crm.Credentials) string {
	deals, err := s.queries.DealsByAssignee(ctx, userID, s.displayLimit, creds)
	if err != nil {
		return fmt.Sprintf("❌ Error consultando Notificaciones: %v", err)
	}
	if len(deals) == 0 {
		return dealsEmpty
	}

	bullets := make([]string, len(deals))
	for i, d := range deals {
		bullets[i] = "• " + d
	}
	return dealsHeader + strings.Join(bullets, "\n\n")
}

// replyPending combines the caller's tasks and open leads. Both queries run
// concurrently; the reply is assembled in fixed order.
func (s *ChatService) replyPending(ctx context.Context, userID string, creds crm.Credentials) string {
	branches := []func(context.Context) ([]string, error){
		func(ctx context.Context) ([]string, error) {
			return s.queries.TasksByAssignee(ctx, userID, s.displayLimit, creds)
		},
		func(ctx context.Context) ([]string, error) {
			return s.queries.OpenLeadsByOwner(ctx, userID, s.displayLimit, creds)
		},
	}
	results := fanout.Run(ctx, pendingMaxWorkers, branches,
		func(ctx context.Context, query func(context.Context) ([]string, error)) ([]string, error) {
			return query(ctx)
		})

	for _, r := range results {
		if r.Err != nil {
			return fmt.Sprintf("❌ Error consultando pendientes: %v", r.Err)
		}
	}
	tasks, leads := results[0].Value, results[1].Value

	var b strings.Builder
	b.WriteString(pendingHeader)
	if len(tasks) > 0 {
		b.WriteString(pendingTasks + strings.Join(tasks, listSeparator) + listTrailer)
	} else {
		b.WriteString(pendingNoTasks)
	}
	if len(leads) > 0 {
		b.WriteString(pendingLeads + strings.Join(leads, listSeparator) + listTrailer)
	} else {
		b.WriteString(pendingNoLeads)
	}
	return b.String()
}

// replyModel forwards the original (not normalized) text to the model.
func (s *ChatService) replyModel(ctx context.Context, text string) string {
	answer, err := s.model.Generate(ctx, text)
	if err != nil {
		s.logger.ErrorContext(ctx, "language model call failed",
			slog.String("operation", "Reply"),
			slog.Any("error", err),
		)
		return fmt.Sprintf(replyLLMErrorFmt, err)
	}
	if answer.BlockReason != "" {
		return fmt.Sprintf(replyBlockedFmt, answer.BlockReason)
	}
	if t := strings.TrimSpace(answer.Text); t != "" {
		return t
	}
	return replyNoAnswer
}

func (s *ChatService) countIntent(ctx context.Context, in intent.Intent) {
	if s.metrics == nil {
		return
	}
	s.metrics.ChatIntentTotal.Add(ctx, 1, metric.WithAttributes(telemetry.AttrIntent.String(in.String())))
}
