package application

import (
	"context"
	"net/http"

	"github.com/usernamecheck/username-checker/pkg/domain/entity"
	"github.com/usernamecheck/username-checker/pkg/domain/service"
	probe "github.com/usernamecheck/username-checker/pkg/infrastructure/http"
)

// ProbeChecker fetches the registry page of an identifier and classifies it
type ProbeChecker struct {
	prober     service.Prober
	classifier service.Classifier
}

var _ service.Checker = (*ProbeChecker)(nil)

// NewProbeChecker creates a checker
func NewProbeChecker(prober service.Prober, classifier service.Classifier) *ProbeChecker {
	return &ProbeChecker{prober: prober, classifier: classifier}
}

// Check never fails: transport errors and non-200 answers become results
func (c *ProbeChecker) Check(ctx context.Context, id string) entity.CheckResult {
	raw, err := c.prober.Probe(ctx, id)
	if err != nil {
		return entity.TransientError(probe.Diagnose(err))
	}
	if raw.StatusCode != http.StatusOK {
		return entity.ProtocolError(raw.StatusCode)
	}
	return c.classifier.Classify(raw)
}
