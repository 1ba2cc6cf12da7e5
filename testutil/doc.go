// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil provides shared test helpers for brigade's package tests.

# Overview

testutil gives every package's unit tests a common, generic base (context
helpers, assertions, async polling, benchmark wrappers) so each package
doesn't reinvent the same scaffolding. It holds no domain-specific fixtures
or mocks — checkpoint, scheduler, bridge, and job each define their own
small test doubles (a counting worker, a FileStore in a temp directory) beside their own
tests, since brigade's test doubles are small enough not to need a shared
factory.

# Capabilities

  - Context helpers: TestContext / TestContextWithTimeout / CancelledContext,
    auto-registering Cleanup to avoid leaks
  - Assertions: AssertJSONEqual / AssertNoError / AssertError /
    AssertContains / AssertNotContains
  - Async assertions: AssertEventuallyTrue / AssertEventuallyEqual, for
    polling a condition with a timeout
  - Data helpers: MustJSON / MustParseJSON
  - Benchmark helpers: BenchmarkHelper wraps common testing.B operations

# Example

	ctx := testutil.TestContext(t)
	testutil.AssertEventuallyTrue(t, func() bool {
		cp, err := store.Load(ctx)
		return err == nil && cp != nil
	}, 2*time.Second)
*/
package testutil
