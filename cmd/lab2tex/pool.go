package main

import (
	"context"
	"fmt"

	"github.com/alnah/labnotes"
)

// Converter is the interface for the conversion service.
type Converter interface {
	Convert(ctx context.Context, input labnotes.Input) (*labnotes.ConvertResult, error)
}

// Compile-time interface implementation check.
var _ Converter = (*labnotes.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire(ctx context.Context) (Converter, error)
	Release(Converter)
	Size() int
}

// poolAdapter adapts *labnotes.ConverterPool to Pool.
type poolAdapter struct {
	pool *labnotes.ConverterPool
}

var _ Pool = (*poolAdapter)(nil)

func (a *poolAdapter) Acquire(ctx context.Context) (Converter, error) {
	conv, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// Release panics when given a Converter that did not come from the pool.
func (a *poolAdapter) Release(c Converter) {
	conv, ok := c.(*labnotes.Converter)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", c))
	}
	a.pool.Release(conv)
}

func (a *poolAdapter) Size() int {
	return a.pool.Size()
}
