package launcher

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// posixTemplate is the POSIX launcher. The symlink walk at the top matters:
// package managers install the launcher behind a symlinked command name, so
// a naive dirname of $0 would derive the wrong bundle root. macOS ships a
// readlink without -f, hence the manual loop.
const posixTemplate = `#!/usr/bin/env bash
# {{ .AppName }} launcher (generated by caskpack; do not edit)
set -euo pipefail

SOURCE="${BASH_SOURCE[0]}"
while [ -h "$SOURCE" ]; do
  DIR="$(cd -P "$(dirname "$SOURCE")" >/dev/null 2>&1 && pwd)"
  SOURCE="$(readlink "$SOURCE")"
  case "$SOURCE" in
    /*) ;;
    *) SOURCE="$DIR/$SOURCE" ;;
  esac
done
SCRIPT_DIR="$(cd -P "$(dirname "$SOURCE")" >/dev/null 2>&1 && pwd)"
APP_ROOT="$(cd -P "$SCRIPT_DIR/.." >/dev/null 2>&1 && pwd)"
RUNTIME_DIR="$APP_ROOT/{{ .RuntimeRelPath }}"

PYTHON=""
for candidate in {{ .Candidates }}; do
  if [ -f "$RUNTIME_DIR/bin/$candidate" ] && [ -x "$RUNTIME_DIR/bin/$candidate" ]; then
    PYTHON="$RUNTIME_DIR/bin/$candidate"
    break
  fi
done

if [ -z "$PYTHON" ]; then
  echo "Error: could not locate an executable interpreter in $RUNTIME_DIR/bin" >&2
  echo "The {{ .AppName }} installation appears incomplete. Please reinstall {{ .AppName }}." >&2
  exit 1
fi

exec "$PYTHON" -m {{ .PackageName }} "$@"
`

// batchTemplate is the Windows launcher. Same probing idea, cmd.exe
// dialect; %~dp0 already resolves the script's own directory.
const batchTemplate = `@echo off
setlocal
set SCRIPT_DIR=%~dp0
set APP_ROOT=%SCRIPT_DIR%..\
set RUNTIME=%APP_ROOT%{{ .RuntimeRelPathWin }}
{{ range .WinCandidates }}set PYTHON=%RUNTIME%\{{ . }}
if exist "%PYTHON%" (
    "%PYTHON%" -m {{ $.PackageName }} %*
    exit /b %ERRORLEVEL%
)
{{ end }}echo Error: could not locate a python interpreter inside {{ .RuntimeRelPathWin }} 1>&2
echo The {{ .AppName }} installation appears incomplete. Please reinstall {{ .AppName }}. 1>&2
exit /b 1
`

var (
	posixTmpl = template.Must(template.New("posix").Parse(posixTemplate))
	batchTmpl = template.Must(template.New("batch").Parse(batchTemplate))
)

// Script renders the POSIX launcher. Output is deterministic: same spec,
// same bytes.
func (s Spec) Script() ([]byte, error) {
	data := struct {
		AppName        string
		PackageName    string
		RuntimeRelPath string
		Candidates     string
	}{
		AppName:        s.AppName,
		PackageName:    s.PackageName,
		RuntimeRelPath: s.RuntimeRelPath,
		Candidates:     strings.Join(s.Interpreters, " "),
	}

	var buf bytes.Buffer
	if err := posixTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render launcher script: %w", err)
	}
	return buf.Bytes(), nil
}

// BatchScript renders the Windows launcher.
func (s Spec) BatchScript() ([]byte, error) {
	winCandidates := []string{`Scripts\python.exe`, `Scripts\python3.exe`, `bin\python3`}

	data := struct {
		AppName           string
		PackageName       string
		RuntimeRelPathWin string
		WinCandidates     []string
	}{
		AppName:           s.AppName,
		PackageName:       s.PackageName,
		RuntimeRelPathWin: strings.ReplaceAll(s.RuntimeRelPath, "/", `\`),
		WinCandidates:     winCandidates,
	}

	var buf bytes.Buffer
	if err := batchTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render batch launcher: %w", err)
	}
	return buf.Bytes(), nil
}
