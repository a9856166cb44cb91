package cmd

import (
	"embed"
	"fmt"
	"sort"
)

//go:embed samples
var samples embed.FS

var sampleFiles = map[string]string{
	"config":      "samples/config.yaml",
	"config-toml": "samples/config.toml",
	"script":      "samples/script",
	"script-info": "samples/script.yaml",
}

// SampleCmd prints a bundled sample.
type SampleCmd struct {
	Args struct {
		Name string `positional-arg-name:"name" description:"config, config-toml, script or script-info"`
	} `positional-args:"yes"`
}

func (c *SampleCmd) Execute(_ []string) error {
	location, ok := sampleFiles[c.Args.Name]
	if !ok {
		return fmt.Errorf("unknown sample %q, available: %v", c.Args.Name, sampleNames())
	}
	data, err := samples.ReadFile(location)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

func sampleNames() []string {
	ret := make([]string, 0, len(sampleFiles))
	for name := range sampleFiles {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}
