package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idverify/pkg/domain/residentid"
)

var now = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr, now)
	return code, stdout.String(), stderr.String()
}

func TestRun_Arguments(t *testing.T) {
	code, out, _ := runCLI(t, "", "110101199003078718", "440305198512312347")
	assert.Equal(t, exitOK, code)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "110101199003078718\tvalid\t110101\t北京市 市辖区 东城区\t1990-03-07\tmale\t34", lines[0])
	assert.Contains(t, lines[1], "female")
}

func TestRun_InvalidIsCollapsed(t *testing.T) {
	code, out, _ := runCLI(t, "", "110101199003078719", "1234")
	assert.Equal(t, exitInvalid, code)
	assert.Equal(t,
		"110101199003078719\t"+residentid.GenericMessage+"\n"+
			"1234\t"+residentid.GenericMessage+"\n",
		out)
}

func TestRun_Reasons(t *testing.T) {
	code, out, _ := runCLI(t, "", "-reasons", "110101199003078719")
	assert.Equal(t, exitInvalid, code)
	assert.Contains(t, out, "(bad_checksum)")
}

func TestRun_Stdin(t *testing.T) {
	code, out, _ := runCLI(t, "110101199003078718\n\n  11010119900307002x  \n")
	assert.Equal(t, exitOK, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "11010119900307002X\tvalid"))
}

func TestRun_FutureCheck(t *testing.T) {
	code, _, _ := runCLI(t, "", "11010120241231005X")
	assert.Equal(t, exitInvalid, code)

	code, _, _ = runCLI(t, "", "-no-future-check", "11010120241231005X")
	assert.Equal(t, exitOK, code)
}

func TestRun_UnknownRegion(t *testing.T) {
	code, out, _ := runCLI(t, "", "999999199001010016")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "\t- - -\t")
}

func TestRun_RegionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
regions:
  - code: "999999"
    province: 测试省
    county: 测试县
`), 0o600))

	code, out, _ := runCLI(t, "", "-regions", path, "999999199001010016")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "测试省 测试县")
}

func TestRun_LoadErrors(t *testing.T) {
	code, _, stderr := runCLI(t, "", "-regions", "regions.csv", "110101199003078718")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "unsupported region file")

	code, _, _ = runCLI(t, "", "-regions", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, exitUsage, code)

	code, _, _ = runCLI(t, "", "-bogus")
	assert.Equal(t, exitUsage, code)
}
