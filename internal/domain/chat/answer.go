package chat

// Answer is a language-model reply. BlockReason is set when the model
// refused the prompt on policy grounds; Text may then be empty.
type Answer struct {
	Text        string
	BlockReason string
}
