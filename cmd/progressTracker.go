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
package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/tebeka/atexit"
	"github.com/vbauerster/mpb/v8"
	"golang.org/x/term"

	pbreporter "github.com/baronblk/access-converter/src/reporter/pb"
)

// ProgressTracker owns the progress bar container of one export run and hands
// out one reporter per table.
type ProgressTracker struct {
	mpbProgress *mpb.Progress
	disablePb   bool
}

func NewProgressTracker(disablePb bool) *ProgressTracker {
	if !disablePb && !term.IsTerminal(int(os.Stdout.Fd())) {
		log.Infof("stdout is not a terminal, progress bars disabled")
		disablePb = true
	}
	pt := &ProgressTracker{disablePb: disablePb}
	if !disablePb {
		pt.mpbProgress = mpb.New()
		atexit.Register(func() {
			pt.mpbProgress.Shutdown()
		})
	}
	return pt
}

// NewReporter is the exportdata.ProgressFactory of the run.
func (pt *ProgressTracker) NewReporter(tableName string) pbreporter.ExportProgressReporter {
	return pbreporter.NewExportPB(pt.mpbProgress, tableName, pt.disablePb)
}

// Done waits until every bar has been completed or aborted and rendered.
func (pt *ProgressTracker) Done() {
	if pt.mpbProgress != nil {
		pt.mpbProgress.Wait()
	}
}
