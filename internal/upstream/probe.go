package upstream

import (
	"context"
	"log/slog"
	"net/http"
)

// ProbeResult is the outcome of an endpoint discovery run.
type ProbeResult struct {
	// Verdict is VerdictConfirmed or VerdictInconclusive when a path answered
	// decisively, VerdictNotFound when no candidate confirmed.
	Verdict Verdict

	// Path and URL identify the path that produced the verdict. For a
	// NotFound result they identify the last path that answered over HTTP.
	Path string
	URL  string

	// Response and Body hold the deciding answer or, for NotFound, the last
	// HTTP answer seen. Both are zero when every path failed in transport.
	Response *Response
	Body     Body

	// Tried lists every path attempted, in order.
	Tried []string

	// TransportFailures counts paths that exhausted their retries without an HTTP answer.
	TransportFailures int

	// LastErr is the last transport failure seen, if any.
	LastErr error
}

// Confirmed reports whether a path confirmed.
func (r ProbeResult) Confirmed() bool {
	return r.Verdict == VerdictConfirmed
}

// Unreachable reports whether every attempted path failed in transport.
func (r ProbeResult) Unreachable() bool {
	return len(r.Tried) > 0 && r.TransportFailures == len(r.Tried)
}

// Err describes why the probe did not confirm. It is nil for a confirmed
// result, the last transport failure when every path was unreachable, an
// ErrUpstream or ErrUnauthorized error for an inconclusive answer, and
// ErrNotFound otherwise.
func (r ProbeResult) Err() error {
	switch {
	case r.Confirmed():
		return nil
	case r.Verdict == VerdictInconclusive:
		return NewStatusError("Probe", r.Response)
	case r.Unreachable() && r.LastErr != nil:
		return r.LastErr
	default:
		return NewNotFoundError("Probe", len(r.Tried))
	}
}

// Prober iterates candidate paths through a retry policy and a fetcher.
type Prober struct {
	fetcher *Fetcher
	retry   RetryPolicy
	logger  *slog.Logger
}

// NewProber creates a Prober. If logger is nil, it uses the default slog logger.
func NewProber(fetcher *Fetcher, retry RetryPolicy, logger *slog.Logger) *Prober {
	if fetcher == nil {
		panic("fetcher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{
		fetcher: fetcher,
		retry:   retry,
		logger:  logger,
	}
}

// Probe tries candidates in declared order.
//
// For each path build produces the request, which goes through the retry
// policy and the fetcher. The first Confirmed path wins and later paths are
// never evaluated. An Inconclusive answer stops probing. NotFound answers and
// paths whose retries were exhausted in transport move on to the next candidate.
func (p *Prober) Probe(ctx context.Context, candidates []string, build func(path string) Request, classify Classifier) ProbeResult {
	if classify == nil {
		classify = ClassifyWith(nil)
	}

	result := ProbeResult{
		Verdict: VerdictNotFound,
		Tried:   make([]string, 0, len(candidates)),
	}

	for _, path := range candidates {
		req := build(path)
		result.Tried = append(result.Tried, path)

		out := p.retry.Do(ctx, func(ctx context.Context, _ int) Outcome {
			return p.fetcher.Fetch(ctx, req)
		})

		if out.Failed() {
			result.TransportFailures++
			result.LastErr = out.Err
			p.logger.Warn("probe path unreachable",
				"target", req.URL(),
				"attempts", out.Attempts,
				"reason", out.Kind.String(),
			)
			continue
		}

		body := Normalize(out.Response.Body)
		verdict := classify(out.Response.StatusCode, body)

		result.Path = path
		result.URL = req.URL()
		result.Response = out.Response
		result.Body = body

		switch verdict {
		case VerdictConfirmed, VerdictInconclusive:
			result.Verdict = verdict
			p.logger.Info("probe decided",
				"target", req.URL(),
				"status", out.Response.StatusCode,
				"verdict", verdict.String(),
			)
			return result
		default:
			if out.Response.StatusCode != http.StatusNotFound {
				// 2xx that matched no heuristic; treated as absent here.
				p.logger.Warn("probe path returned unconfirmed success",
					"target", req.URL(),
					"status", out.Response.StatusCode,
				)
			}
		}
	}

	return result
}
