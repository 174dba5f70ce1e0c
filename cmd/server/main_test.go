package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCmd_Version(t *testing.T) {
	req := require.New(t)
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	req.NoError(cmd.Execute())
	req.Equal(version+"\n", out.String())
}

func TestRootCmd_Has_Serve(t *testing.T) {
	req := require.New(t)
	cmd, _, err := newRootCmd().Find([]string{"serve"})
	req.NoError(err)
	req.Equal("serve", cmd.Name())
	req.NotNil(cmd.InheritedFlags().Lookup("env"))
}
