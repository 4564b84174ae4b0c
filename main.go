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
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tebeka/atexit"

	"github.com/baronblk/access-converter/cmd"
	"github.com/baronblk/access-converter/src/utils"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	registerSignalHandlers(cancel)
	cmd.Execute(ctx)
	atexit.Exit(0)
}

// The first signal stops the export at the next batch boundary, so the
// partial file is removed and the summary still gets written. A second
// signal exits right away.
func registerSignalHandlers(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		utils.PrintAndLog("Received signal %s. Stopping after the current batch...", sig)
		cancel()
		sig = <-sigs
		utils.PrintAndLog("Received signal %s. Exiting...", sig)
		atexit.Exit(1)
	}()
}
