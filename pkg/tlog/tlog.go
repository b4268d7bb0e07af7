// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlog

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

//Testing implements io.Writer on top of a test's log
type Testing struct {
	Test testing.TB
}

//Write logs one formatted logrus entry
func (t Testing) Write(p []byte) (int, error) {
	t.Test.Helper()
	t.Test.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

//New returns a debug level logger that writes to tb's log
func New(tb testing.TB) *logrus.Logger {
	l := logrus.New()
	l.Out = Testing{Test: tb}
	l.Level = logrus.DebugLevel
	l.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	return l
}
