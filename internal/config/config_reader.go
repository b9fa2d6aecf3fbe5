package config

import (
	"bytes"
	"io"
	"os"
)

func GetConfigReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err == nil {
		return f, nil
	}

	var defaultConfigYaml = `compression:
  level: -1
  buffer_size: 32768
  scratch_size: 32768
logging:
  level: "info"
  output: ""
`

	var bb bytes.Buffer
	if _, err = bb.WriteString(defaultConfigYaml); err != nil {
		return nil, err
	}

	return io.NopCloser(&bb), nil
}
