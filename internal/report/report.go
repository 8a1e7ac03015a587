// Package report renders the exit summary printed after the operator quits.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"zsnapfree/internal/zfs"
	"zsnapfree/pkg/utils"
)

type Summary struct {
	Dataset  string   `json:"dataset" yaml:"dataset"`
	Destroys []string `json:"destroys" yaml:"destroys"`
	Count    int      `json:"count" yaml:"count"`
	Bytes    uint64   `json:"bytes" yaml:"bytes"`
	Reclaim  string   `json:"reclaim" yaml:"reclaim"`
	Command  string   `json:"command,omitempty" yaml:"command,omitempty"`
}

// New summarizes the final estimate. command is the equivalent dry-run
// command line and is dropped when nothing would be destroyed.
func New(dataset string, res zfs.ReclaimResult, command string) Summary {
	s := Summary{
		Dataset:  dataset,
		Destroys: res.Destroys,
		Count:    len(res.Destroys),
		Bytes:    res.Bytes,
		Reclaim:  utils.HumanizeBytes(res.Bytes),
		Command:  command,
	}
	if s.Destroys == nil {
		s.Destroys = []string{}
	}
	if s.Count == 0 {
		s.Command = ""
	}
	return s
}

// Write renders s to w as text, json or yaml.
func Write(w io.Writer, format string, s Summary) error {
	switch format {
	case "", "text":
		return writeText(w, s)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown report format %q", format)
}

func writeText(w io.Writer, s Summary) error {
	if s.Count == 0 {
		_, err := fmt.Fprintf(w, "No snapshots of %s are marked; nothing would be reclaimed.\n", s.Dataset)
		return err
	}
	_, err := fmt.Fprintf(w,
		"Running the following command should pretend to delete %d snapshots and\n"+
			"show that this would reclaim %s:\n\n%s\n\n"+
			"run it as root and without `-n` to actually do it.\n",
		s.Count, s.Reclaim, s.Command)
	return err
}
