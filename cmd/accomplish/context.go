package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"

	"accomplish/internal/api"
	"accomplish/internal/auth"
	"accomplish/internal/config"
	"accomplish/internal/logging"
)

type commandContext struct {
	configFlag    *string
	profileFlag   *string
	verboseFlag   *bool
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	log        *slog.Logger

	servicesOnce sync.Once
	client       *api.Client
	auth         *auth.Service
	servicesErr  error
}

func newCommandContext(configFlag, profileFlag *string, verboseFlag *bool, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		profileFlag:   profileFlag,
		verboseFlag:   verboseFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path, profile string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		if c.profileFlag != nil {
			profile = strings.TrimSpace(*c.profileFlag)
		}
		if path == "" {
			// First run: put a commented sample in place so there is a file
			// to edit.
			if defaultPath, err := config.DefaultConfigPath(); err == nil {
				if _, statErr := os.Stat(defaultPath); errors.Is(statErr, fs.ErrNotExist) {
					if createErr := config.CreateSample(defaultPath); createErr != nil {
						c.logger().Debug("sample config not written", logging.Error(createErr))
					}
				}
			}
		}
		cfg, _, err := config.Load(path, profile)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *slog.Logger {
	c.loggerOnce.Do(func() {
		level := "info"
		if c.verboseFlag != nil && *c.verboseFlag {
			level = "debug"
		}
		format := "console"
		if c.logFormatFlag != nil && strings.TrimSpace(*c.logFormatFlag) != "" {
			format = strings.TrimSpace(*c.logFormatFlag)
		}
		logger, err := logging.New(logging.Options{Level: level, Format: format})
		if err != nil {
			logger = logging.NewNop()
		}
		c.log = logger
	})
	return c.log
}

// services wires the API client and auth service for the active profile.
func (c *commandContext) services() (*api.Client, *auth.Service, error) {
	c.servicesOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.servicesErr = err
			return
		}
		client, err := api.New(cfg.APIBase)
		if err != nil {
			c.servicesErr = err
			return
		}
		c.client = client
		c.auth = auth.NewService(client, cfg.TokenPath(), c.logger().With(logging.String(logging.FieldProfile, cfg.Profile)))
	})
	return c.client, c.auth, c.servicesErr
}

// requireAuth returns a validated client, or an actionable error when no
// usable token exists.
func (c *commandContext) requireAuth(ctx context.Context) (*api.Client, error) {
	client, authService, err := c.services()
	if err != nil {
		return nil, err
	}
	if err := authService.EnsureAuthenticated(ctx); err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			return nil, errors.New("not logged in; run 'accomplish login' first")
		}
		return nil, fmt.Errorf("validate credentials: %w", err)
	}
	return client, nil
}
