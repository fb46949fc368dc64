// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mocks provides a testify mock of publish.Storage.
package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/pdiddy/backlog-exporter/internal/publish"
)

// MockStorage records Put calls.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, key string, r io.Reader, opts publish.PutOptions) (publish.ObjectInfo, error) {
	args := m.Called(ctx, key, r, opts)
	if f, ok := args.Get(0).(func(context.Context, string, io.Reader, publish.PutOptions) publish.ObjectInfo); ok {
		return f(ctx, key, r, opts), args.Error(1)
	}
	return args.Get(0).(publish.ObjectInfo), args.Error(1)
}
