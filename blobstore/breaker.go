/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ENO0123/hyoe-medical-records-system/logging"
)

var logger = logging.Logger(logging.SourceBlob)

// BreakerConfig tunes the circuit breaker around a store.
type BreakerConfig struct {
	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32
	// Interval is the period after which closed-state counts reset.
	Interval time.Duration
	// Timeout is how long the breaker stays open.
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures that opens it.
	FailureThreshold uint32
}

// Breaker guards a Store with a circuit breaker. Missing blobs and rejected
// uploads are the caller's fault and do not count as failures.
type Breaker struct {
	store Store
	cb    *gobreaker.CircuitBreaker
}

var _ Store = (*Breaker)(nil)

// NewBreaker wraps store.
func NewBreaker(store Store, config BreakerConfig) *Breaker {
	if config.MaxRequests == 0 {
		config.MaxRequests = 1
	}
	if config.Interval == 0 {
		config.Interval = time.Minute
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5
	}

	settings := gobreaker.Settings{
		Name:        "blobstore",
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &Breaker{store: store, cb: gobreaker.NewCircuitBreaker(settings)}
}

func isClientError(err error) bool {
	return errors.Is(err, ErrBlobNotFound) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrInvalidKey) ||
		errors.Is(err, ErrEmptyFile) ||
		errors.Is(err, context.Canceled)
}

// State reports the breaker state, e.g. "closed".
func (b *Breaker) State() string {
	return b.cb.State().String()
}

func (b *Breaker) wrap(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("blob store unavailable: %w", err)
	}

	return err
}

// Put stores a blob through the breaker.
func (b *Breaker) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	n, err := b.cb.Execute(func() (interface{}, error) {
		return b.store.Put(ctx, key, r)
	})
	if err != nil {
		return 0, b.wrap(err)
	}

	return n.(int64), nil
}

// Open opens a blob through the breaker.
func (b *Breaker) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := b.cb.Execute(func() (interface{}, error) {
		return b.store.Open(ctx, key)
	})
	if err != nil {
		return nil, b.wrap(err)
	}

	return rc.(io.ReadCloser), nil
}

// Delete removes a blob through the breaker.
func (b *Breaker) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.store.Delete(ctx, key)
	})

	return b.wrap(err)
}
