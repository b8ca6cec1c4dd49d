package reviewer

import (
	"database/sql"

	"github.com/nsxbet/sql-sandbox/pkg/hint"
)

// ReviewOption is a functional option for customizing review behavior.
type ReviewOption func(*reviewOptions)

// reviewOptions holds optional configuration for a review operation.
type reviewOptions struct {
	driver       *sql.DB
	hints        *hint.Set
	queryLogging bool
}

// WithDriver provides the sandbox connection. Without it the dry-run rule
// reports nothing.
//
//	result, err := r.Review(ctx, script, WithDriver(session.DB()))
func WithDriver(driver *sql.DB) ReviewOption {
	return func(opts *reviewOptions) {
		opts.driver = driver
	}
}

// WithHints replaces the hint catalog used by the dialect rules, e.g. a catalog
// with some rules removed:
//
//	result, err := r.Review(ctx, script, WithHints(hint.Catalog().Without(hint.RuleUnsigned)))
func WithHints(set *hint.Set) ReviewOption {
	return func(opts *reviewOptions) {
		opts.hints = set
	}
}

// WithQueryLogging logs every statement of the review at debug level to stderr,
// whatever the level of the default logger.
func WithQueryLogging() ReviewOption {
	return func(opts *reviewOptions) {
		opts.queryLogging = true
	}
}
