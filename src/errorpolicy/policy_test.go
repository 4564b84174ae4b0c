/*
Copyright (c) YugabyteDB, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package errorpolicy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorPolicy(t *testing.T) {
	policy, err := NewErrorPolicy("abort")
	require.NoError(t, err)
	assert.Equal(t, AbortErrorPolicy, policy)

	policy, err = NewErrorPolicy(" Continue ")
	require.NoError(t, err)
	assert.Equal(t, ContinueErrorPolicy, policy)
	assert.Equal(t, "continue", policy.String())

	_, err = NewErrorPolicy("StashAndContinue")
	assert.ErrorContains(t, err, "invalid error policy")
}
