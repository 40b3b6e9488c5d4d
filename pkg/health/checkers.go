package health

import (
	"context"
	"time"
)

// Checkable is satisfied by storage and cache adapters.
type Checkable interface {
	HealthCheck(ctx context.Context) error
}

// AdapterChecker turns an adapter's HealthCheck into a Checker. A failing
// adapter reports failStatus, so optional dependencies can degrade the
// service instead of failing it.
type AdapterChecker struct {
	name       string
	adapter    Checkable
	failStatus Status
}

// NewAdapterChecker creates a checker that reports unhealthy on failure.
func NewAdapterChecker(name string, adapter Checkable) *AdapterChecker {
	return &AdapterChecker{name: name, adapter: adapter, failStatus: StatusUnhealthy}
}

// NewOptionalChecker creates a checker that reports degraded on failure.
func NewOptionalChecker(name string, adapter Checkable) *AdapterChecker {
	return &AdapterChecker{name: name, adapter: adapter, failStatus: StatusDegraded}
}

// Check implements Checker.
func (c *AdapterChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	err := c.adapter.HealthCheck(ctx)
	duration := time.Since(start)

	if err != nil {
		return CheckResult{
			Name:      c.name,
			Status:    c.failStatus,
			Error:     err.Error(),
			Timestamp: time.Now(),
			Duration:  duration,
		}
	}
	return CheckResult{
		Name:      c.name,
		Status:    StatusHealthy,
		Message:   "OK",
		Timestamp: time.Now(),
		Duration:  duration,
	}
}

// Name implements Checker.
func (c *AdapterChecker) Name() string { return c.name }

// PingChecker always reports healthy. It marks the process itself as alive.
type PingChecker struct {
	name string
}

// NewPingChecker creates a PingChecker.
func NewPingChecker(name string) *PingChecker {
	return &PingChecker{name: name}
}

// Check implements Checker.
func (c *PingChecker) Check(context.Context) CheckResult {
	return CheckResult{
		Name:      c.name,
		Status:    StatusHealthy,
		Message:   "Service is alive",
		Timestamp: time.Now(),
	}
}

// Name implements Checker.
func (c *PingChecker) Name() string { return c.name }

// CustomChecker adapts a function returning status, message and error.
type CustomChecker struct {
	name      string
	checkFunc func(ctx context.Context) (Status, string, error)
}

// NewCustomChecker creates a CustomChecker.
func NewCustomChecker(name string, checkFunc func(ctx context.Context) (Status, string, error)) *CustomChecker {
	return &CustomChecker{name: name, checkFunc: checkFunc}
}

// Check implements Checker.
func (c *CustomChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	status, message, err := c.checkFunc(ctx)

	result := CheckResult{
		Name:      c.name,
		Status:    status,
		Message:   message,
		Timestamp: time.Now(),
		Duration:  time.Since(start),
	}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}

// Name implements Checker.
func (c *CustomChecker) Name() string { return c.name }
