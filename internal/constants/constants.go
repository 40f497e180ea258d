// Package constants provides a centralized location for all configuration
// values and magic numbers used throughout the vigil application.
package constants

import "time"

// AppName is the directory name used under the user config and cache dirs
// and the service name registered with the OS keyring.
const AppName = "vigil"

// Fetch window constants. These caps match the fixed page sizes of the two
// API calls; there is no pagination beyond them.
const (
	// SearchPageSize is the maximum number of items returned by the
	// search call.
	SearchPageSize = 50

	// AssigneePageSize is the maximum number of assignees fetched per item.
	AssigneePageSize = 10

	// CommentPageSize is the maximum number of comments fetched per item,
	// most recently updated first.
	CommentPageSize = 20

	// ThreadPageSize is the maximum number of review threads fetched per
	// pull request.
	ThreadPageSize = 20

	// ThreadCommentPageSize is the maximum number of comments fetched per
	// review thread, in creation order.
	ThreadCommentPageSize = 20
)

// Scheduling constants
const (
	// DefaultPollInterval is used when the config does not set a positive
	// poll interval.
	DefaultPollInterval = 5 * time.Minute

	// ScheduleName identifies the single periodic trigger. Scheduling
	// under the same name replaces the previous registration.
	ScheduleName = "watch-cycle"
)

// Rate limiting constants
const (
	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged.
	RateLimitLowWatermark = 100
)

// History constants
const (
	// MaxHistoryRecords caps the cycle history file; older snapshots are
	// pruned on write.
	MaxHistoryRecords = 500
)

// TUI update and display constants
const (
	// HeaderLines is the number of lines used for the list view header.
	HeaderLines = 2

	// FooterLines is the number of lines used for the list view footer.
	FooterLines = 3

	// TruncationSuffixWidth is the width of the "..." suffix when truncating strings.
	TruncationSuffixWidth = 3
)
