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
package config

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestValidateLogLevel(t *testing.T) {
	t.Cleanup(func() { LogLevel = INFO })

	LogLevel = " DEBUG "
	assert.NoError(t, ValidateLogLevel())
	assert.Equal(t, DEBUG, LogLevel)
	assert.Equal(t, log.DebugLevel, LogrusLevel())
	assert.True(t, IsLogLevelDebugOrBelow())

	LogLevel = "warn"
	assert.NoError(t, ValidateLogLevel())
	assert.Equal(t, log.WarnLevel, LogrusLevel())
	assert.False(t, IsLogLevelDebugOrBelow())

	LogLevel = "verbose"
	err := ValidateLogLevel()
	assert.ErrorContains(t, err, "invalid log level: verbose")
	assert.Equal(t, log.InfoLevel, LogrusLevel())
}
