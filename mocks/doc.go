// Package mocks provides testify/mock doubles for the interfaces in
// internal/ports. Each constructor registers AssertExpectations on cleanup.
package mocks
