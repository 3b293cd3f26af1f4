package config

import (
	"fmt"
	"os"
)

func Template() string {
	return compcheckTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(compcheckTemplate), 0o600)
}

const compcheckTemplate = `# Directory holding the wayland-N sockets. Defaults to $XDG_RUNTIME_DIR.
# runtime_dir = "/run/user/1000"

# Sockets to probe. Names are resolved against runtime_dir; absolute
# paths are used as is. Empty probes wayland-0, wayland-1, ...
sockets = []

# text | yaml
format = "text"

# Prometheus text exposition written after the run, if set.
# metrics_file = "/var/lib/node_exporter/textfile/compcheck.prom"

log_level = "info"

connect_attempts = 1
connect_timeout = "0s"

# 0s blocks until the compositor answers.
read_timeout = "0s"
write_timeout = "0s"
`
