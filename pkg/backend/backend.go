// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package backend wires the directory mappings to the storage selected in
// the configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/stacklok/jsonbind/pkg/adapter/memory"
	"github.com/stacklok/jsonbind/pkg/adapter/redis"
	"github.com/stacklok/jsonbind/pkg/adapter/sqlite"
	"github.com/stacklok/jsonbind/pkg/config"
	"github.com/stacklok/jsonbind/pkg/directory"
	"github.com/stacklok/jsonbind/pkg/logger"
)

// Collection names used by every backend.
const (
	CompaniesCollection = "companies"
	EmployeesCollection = "employees"
)

// Backend is a directory registry bound to one store.
type Backend struct {
	Registry *directory.Registry
	Type     string
	Tag      string

	close func() error
}

// Close releases the store.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects to the store selected by cfg and wires the directory
// mappings to it.
func Open(ctx context.Context, cfg *config.Config, opts ...directory.RegistryOption) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l := logger.Get()

	switch cfg.Adapter.Type {
	case config.AdapterMemory:
		store := memory.NewStore(memory.WithLogger(l))
		return &Backend{
			Registry: directory.NewRegistry(
				memory.NewAdapter[*directory.Company](store, CompaniesCollection,
					memory.WithPrimaryKeys[*directory.Company]("UUID")),
				memory.NewAdapter[*directory.Employee](store, EmployeesCollection,
					memory.WithPrimaryKeys[*directory.Employee]("UUID")),
				opts...,
			),
			Type: config.AdapterMemory,
			Tag:  store.Tag(),
		}, nil

	case config.AdapterSQLite:
		db, err := sqlite.Open(ctx, cfg.Adapter.SQLite.Path, sqlite.WithLogger(l))
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return &Backend{
			Registry: directory.NewRegistry(
				sqlite.NewAdapter[*directory.Company](db, CompaniesCollection, "UUID"),
				sqlite.NewAdapter[*directory.Employee](db, EmployeesCollection, "UUID"),
				opts...,
			),
			Type:  config.AdapterSQLite,
			Tag:   db.Tag(),
			close: db.Close,
		}, nil

	case config.AdapterRedis:
		rc := cfg.Adapter.Redis
		store, err := redis.Dial(ctx, redis.Config{
			Addrs:        []string{rc.Addr},
			Username:     rc.Username,
			Password:     rc.Password,
			DB:           rc.DB,
			KeyPrefix:    rc.KeyPrefix,
			DialTimeout:  rc.DialTimeout,
			ReadTimeout:  rc.ReadTimeout,
			WriteTimeout: rc.WriteTimeout,

			ConnectAttempts: rc.ConnectAttempts,
		}, redis.WithLogger(l))
		if err != nil {
			return nil, fmt.Errorf("failed to open redis store: %w", err)
		}
		return &Backend{
			Registry: directory.NewRegistry(
				redis.NewAdapter[*directory.Company](store, CompaniesCollection, "UUID"),
				redis.NewAdapter[*directory.Employee](store, EmployeesCollection, "UUID"),
				opts...,
			),
			Type:  config.AdapterRedis,
			Tag:   store.Tag(),
			close: store.Close,
		}, nil
	}

	return nil, fmt.Errorf("%w: unknown adapter type %q", config.ErrInvalidConfig, cfg.Adapter.Type)
}
