package service

import (
	"context"

	"github.com/usernamecheck/username-checker/pkg/domain/entity"
)

// RawResponse is what the registry returned for one identifier
type RawResponse struct {
	// FinalURL is the URL after redirects were followed
	FinalURL   string
	StatusCode int
	Body       string
}

// Prober issues the request for one identifier
type Prober interface {
	// Probe fetches the registry page of the identifier
	Probe(ctx context.Context, id string) (*RawResponse, error)
}

// Classifier turns a successful response into a result category
type Classifier interface {
	// Classify must be pure: no I/O, same input gives same output
	Classify(raw *RawResponse) entity.CheckResult
}

// Checker produces the result for one identifier. Failures are folded into
// the returned result, never returned as errors.
type Checker interface {
	Check(ctx context.Context, id string) entity.CheckResult
}
