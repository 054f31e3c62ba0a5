package taxonomy

import "github.com/crimson-sun/sawmill/internal/model"

// Default returns the built-in taxonomy used when no file is configured.
// Indicators are literal, case-insensitive substrings.
func Default() []model.FailureCode {
	return []model.FailureCode{
		{
			Code: "Test:Failure:Assertion",
			Indicators: []string{
				"AssertionError",
				"assertion failed",
				"assert failed",
				"expected but was",
			},
		},
		{
			Code: "Test:Failure:Timeout",
			Indicators: []string{
				"TimeoutException",
				"test timed out",
				"timeout waiting for",
			},
		},
		{
			Code: "Infra:Network:Timeout",
			Indicators: []string{
				"connection timeout",
				"network timeout",
				"read timed out",
				"connection refused",
			},
		},
		{
			Code: "Infra:Resource:OutOfMemory",
			Indicators: []string{
				"OutOfMemoryError",
				"cannot allocate memory",
				"oom-killed",
			},
		},
		{
			Code: "Build:Compilation:Error",
			Indicators: []string{
				"compilation failed",
				"compile error",
				"syntax error",
				"undefined reference",
			},
		},
		{
			Code: "Build:Dependency:Resolution",
			Indicators: []string{
				"could not resolve dependency",
				"no matching version",
				"404 not found",
			},
		},
	}
}
