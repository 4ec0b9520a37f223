package digests

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/tabmemory/tabmemory/app/apperrors"
)

// CronScheduler generates a digest over the default range on a cron
// schedule. Disabled when the spec is empty.
type CronScheduler struct {
	service *Service
	spec    string
	cron    *cron.Cron
}

func NewCronScheduler(service *Service, spec string) *CronScheduler {
	return &CronScheduler{
		service: service,
		spec:    spec,
		cron:    cron.New(),
	}
}

func (c *CronScheduler) Start() error {
	if c.spec == "" {
		slog.Info("Scheduled digest generation disabled")
		return nil
	}

	_, err := c.cron.AddFunc(c.spec, c.run)
	if err != nil {
		return fmt.Errorf("failed to set up digest schedule %q: %w", c.spec, err)
	}

	c.cron.Start()
	slog.Info("Scheduled digest generation enabled", "cron", c.spec)
	return nil
}

func (c *CronScheduler) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}

func (c *CronScheduler) run() {
	digest, err := c.service.Generate(context.Background(), nil, nil)
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) && appErr.Code == apperrors.CodeEmptyRange {
			slog.Info("Skipping scheduled digest, no tabs in range")
			return
		}
		slog.Error("Scheduled digest generation failed", "error", err)
		return
	}

	slog.Info("Scheduled digest generated", "id", digest.ID, "tab_count", digest.TabCount)
}
