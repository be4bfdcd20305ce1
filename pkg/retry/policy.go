package retry

import (
	"math"
	"strconv"
	"time"

	"github.com/StricklySoft/erks/pkg/config"
	erks "github.com/StricklySoft/erks/pkg/errors"
)

// Policy governs delay growth and retry limits. The struct tags let a
// policy be loaded with [config.Loader]:
//
//	policy, err := retry.LoadPolicy(config.New().WithEnvPrefix("RETRY"))
type Policy struct {
	// BaseDelay is the wait after the first failure.
	BaseDelay time.Duration `env:"BASE_DELAY" envDefault:"100ms" yaml:"base_delay" json:"base_delay" toml:"base_delay"`

	// Multiplier scales the delay after each further failure.
	Multiplier float64 `env:"MULTIPLIER" envDefault:"2" yaml:"multiplier" json:"multiplier" toml:"multiplier"`

	// MaxDelay caps a single wait before jitter is applied. Zero leaves
	// the wait uncapped.
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"10s" yaml:"max_delay" json:"max_delay" toml:"max_delay"`

	// Jitter is the fraction of the delay randomly added or removed,
	// between 0 and 1.
	Jitter float64 `env:"JITTER" envDefault:"0.1" yaml:"jitter" json:"jitter" toml:"jitter"`

	// MaxAttempts is the total number of invocations, including the first.
	MaxAttempts int `env:"MAX_ATTEMPTS" envDefault:"3" yaml:"max_attempts" json:"max_attempts" toml:"max_attempts"`

	// MaxElapsed bounds the total time spent, measured from the first
	// attempt. Zero means unbounded.
	MaxElapsed time.Duration `env:"MAX_ELAPSED" yaml:"max_elapsed" json:"max_elapsed" toml:"max_elapsed"`
}

// DefaultPolicy returns the policy used when nothing is configured:
// three attempts, 100ms doubling up to 10s, ten percent jitter.
func DefaultPolicy() Policy {
	return Policy{
		BaseDelay:   100 * time.Millisecond,
		Multiplier:  2,
		MaxDelay:    10 * time.Second,
		Jitter:      0.1,
		MaxAttempts: 3,
	}
}

// LoadPolicy loads a policy with the given loader. Unset fields take the
// values of [DefaultPolicy].
func LoadPolicy(loader *config.Loader) (Policy, error) {
	var p Policy
	if err := loader.Load(&p); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate reports the first field that violates the policy invariants.
// The returned error has code [erks.CodeValidation].
func (p Policy) Validate() error {
	switch {
	case p.MaxAttempts < 1:
		return erks.Wrap(erks.Validation("max_attempts", strconv.Itoa(p.MaxAttempts), ">= 1"))
	case p.BaseDelay <= 0:
		return erks.Wrap(erks.Validation("base_delay", p.BaseDelay.String(), "> 0"))
	case p.Multiplier < 1 || math.IsNaN(p.Multiplier) || math.IsInf(p.Multiplier, 0):
		return erks.Wrap(erks.Validation("multiplier", formatFloat(p.Multiplier), ">= 1"))
	case p.MaxDelay > 0 && p.MaxDelay < p.BaseDelay:
		return erks.Wrap(erks.Validation("max_delay", p.MaxDelay.String(), ">= base_delay"))
	case p.Jitter < 0 || p.Jitter > 1 || math.IsNaN(p.Jitter):
		return erks.Wrap(erks.Validation("jitter", formatFloat(p.Jitter), "0..1"))
	case p.MaxElapsed < 0:
		return erks.Wrap(erks.Validation("max_elapsed", p.MaxElapsed.String(), ">= 0"))
	}
	return nil
}

// Delay returns the wait after the given failed attempt, counting from
// 1, without jitter: BaseDelay * Multiplier^(attempt-1), capped at
// MaxDelay. A zero MaxDelay leaves the delay uncapped.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if p.MaxDelay > 0 && d >= float64(p.MaxDelay) {
		return p.MaxDelay
	}
	if math.IsInf(d, 0) || math.IsNaN(d) || d >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// jittered applies Jitter to Delay(attempt). r is uniform in [0, 1).
func (p Policy) jittered(attempt int, r float64) time.Duration {
	d := float64(p.Delay(attempt))
	d += d * p.Jitter * (2*r - 1)
	switch {
	case d < 0:
		return 0
	case d >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
