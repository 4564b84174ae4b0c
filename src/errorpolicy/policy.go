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
	"strings"

	goerrors "github.com/go-errors/errors"
)

/*
ErrorPolicy decides what a multi-table export does when the export of one
table fails:
1. Abort: stop and do not start the remaining tables.
2. Continue: record the failure and go on with the next table.
Tables that were exported before the failure are kept in both cases.
*/
type ErrorPolicy int

const (
	AbortErrorPolicy    ErrorPolicy = iota // Stop at the first failed table
	ContinueErrorPolicy                    // Record the failure and export the next table
)

const (
	AbortErrorPolicyName    = "abort"
	ContinueErrorPolicyName = "continue"
)

var errorPolicyNames = map[ErrorPolicy]string{
	AbortErrorPolicy:    AbortErrorPolicyName,
	ContinueErrorPolicy: ContinueErrorPolicyName,
}

var ErrorPolicyNames = []string{AbortErrorPolicyName, ContinueErrorPolicyName}

func (e ErrorPolicy) String() string {
	return errorPolicyNames[e]
}

func NewErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case AbortErrorPolicyName:
		return AbortErrorPolicy, nil
	case ContinueErrorPolicyName:
		return ContinueErrorPolicy, nil
	default:
		return 0, goerrors.Errorf("invalid error policy: %q. Allowed values are: %s", s, strings.Join(ErrorPolicyNames, ", "))
	}
}
