// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestParseLogOptions(t *testing.T) {
	o, err := ParseLogOptions("info", "JSON")
	require.NoError(t, err)
	assert.Equal(t, LogOptions{Level: logrus.InfoLevel, Format: LogFormatJSON}, o)

	o, err = ParseLogOptions("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultLogOptions(), o)

	_, err = ParseLogOptions("loud", "xml")
	assert.Len(t, multierr.Errors(err), 2)
}

func TestSetupLogging(t *testing.T) {
	t.Cleanup(func() { SetupLogging(DefaultLogOptions(), false) })

	SetupLogging(LogOptions{Level: logrus.ErrorLevel}, false)
	assert.Equal(t, logrus.ErrorLevel, GetLogLevel())

	SetupLogging(LogOptions{Level: logrus.ErrorLevel}, true)
	assert.Equal(t, logrus.DebugLevel, GetLogLevel())
}

func TestSubsys(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	t.Cleanup(func() { SetLogOutput(os.Stderr) })

	Subsys("btf").Warn("hello")
	assert.Contains(t, buf.String(), "subsys=btf")
	assert.Contains(t, buf.String(), "msg=hello")
}
