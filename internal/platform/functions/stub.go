package functions

import (
	"context"
	"errors"
)

type StubInvoker struct {
	InvokeFunc func(ctx context.Context, name string, payload, out any, opts ...InvokeOption) error
}

var _ Invoker = (*StubInvoker)(nil)

func (s *StubInvoker) Invoke(ctx context.Context, name string, payload, out any, opts ...InvokeOption) error {
	if s.InvokeFunc == nil {
		return errors.New("Invoke not implemented by stub")
	}
	return s.InvokeFunc(ctx, name, payload, out, opts...)
}

type StubTokenSource struct {
	TokenFunc   func(ctx context.Context) (string, error)
	RefreshFunc func(ctx context.Context) (string, error)
}

var _ TokenSource = (*StubTokenSource)(nil)

func (s *StubTokenSource) Token(ctx context.Context) (string, error) {
	if s.TokenFunc == nil {
		return "", errors.New("Token not implemented by stub")
	}
	return s.TokenFunc(ctx)
}

func (s *StubTokenSource) Refresh(ctx context.Context) (string, error) {
	if s.RefreshFunc == nil {
		return "", errors.New("Refresh not implemented by stub")
	}
	return s.RefreshFunc(ctx)
}
