package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"attendance/pkg/roster"

	"gopkg.in/yaml.v3"
)

type rosterOutput struct {
	Participants roster.Roster `json:"participants" yaml:"participants"`
	Stats        roster.Stats  `json:"stats" yaml:"stats"`
}

func attendanceMark(attended bool) string {
	if attended {
		return "出席"
	}
	return "-"
}

func writeStructured(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}
	return fmt.Errorf("unsupported format %q", format)
}

func writeRoster(w io.Writer, format string, r roster.Roster, stats roster.Stats) error {
	if r == nil {
		r = roster.Roster{}
	}
	if format != "text" {
		return writeStructured(w, format, rosterOutput{Participants: r, Stats: stats})
	}
	if len(r) == 0 {
		fmt.Fprintln(w, "参加者がいません")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "No\t名前\t1回目\t2回目\tコメント\t更新日時")
	for _, p := range r {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			p.Number, p.Name, attendanceMark(p.FirstSession), attendanceMark(p.SecondSession), p.Comment, p.LastModified)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return writeStats(w, format, stats)
}

func writeStats(w io.Writer, format string, s roster.Stats) error {
	if format != "text" {
		return writeStructured(w, format, s)
	}
	fmt.Fprintf(w, "総参加者数: %d\n", s.Total)
	fmt.Fprintf(w, "1回目出席: %d (%.1f%%)\n", s.FirstAttended, s.FirstRate())
	fmt.Fprintf(w, "2回目出席: %d (%.1f%%)\n", s.SecondAttended, s.SecondRate())
	fmt.Fprintf(w, "両方出席: %d (%.1f%%)\n", s.BothAttended, s.BothRate())
	return nil
}
