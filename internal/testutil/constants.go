package testutil

import "time"

const (
	// TestTimeout is the default timeout for test operations
	TestTimeout = 30 * time.Second

	// ShortTestTimeout is a shorter timeout for quick operations
	ShortTestTimeout = 5 * time.Second

	// TestRowCount is a common number of result rows to generate
	TestRowCount = 10
)

// Common test strings
const (
	// TestTable is the default test table name
	TestTable = "Account"

	// TestDimension is the default categorical x-axis column
	TestDimension = "Industry"

	// TestMetric is the default numeric y-axis column
	TestMetric = "AnnualRevenue"
)
