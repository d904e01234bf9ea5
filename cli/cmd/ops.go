package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/reckon/lang"
)

// Ops lists the operators and functions registered in the default registry.
type Ops struct {
	Output string `default:"text" enum:"text,json,yaml" help:"Output format." short:"o"`
}

// opsReport is the serializable form of the registry tables.
type opsReport struct {
	Prefix    []string   `json:"prefix"    yaml:"prefix"`
	Infix     []infixRow `json:"infix"     yaml:"infix"`
	Postfix   []string   `json:"postfix"   yaml:"postfix"`
	Functions []string   `json:"functions" yaml:"functions"`
}

// infixRow is one entry of the infix table with its parse attributes.
type infixRow struct {
	Op    string `json:"op"    yaml:"op"`
	Prec  int    `json:"prec"  yaml:"prec"`
	Assoc string `json:"assoc" yaml:"assoc"`
	Class string `json:"class" yaml:"class"`
}

// Run executes the ops command.
func (o *Ops) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	report := buildOpsReport(lang.Default())

	switch o.Output {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		fmt.Println(string(data))

	case "yaml":
		data, err := yaml.MarshalContext(ctx, report)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		fmt.Print(string(data))

	default:
		writeOpsReport(os.Stdout, report)
	}

	return nil
}

// buildOpsReport snapshots the registry tables in enumeration order.
func buildOpsReport(reg *lang.Registry) opsReport {
	infix := reg.InfixOperators()
	rows := make([]infixRow, len(infix))

	for i, op := range infix {
		class := "calc"
		if op.Setter {
			class = "setter"
		}

		rows[i] = infixRow{
			Op:    op.Op,
			Prec:  op.Prec,
			Assoc: op.Assoc.String(),
			Class: class,
		}
	}

	return opsReport{
		Prefix:    reg.PrefixOperators(),
		Infix:     rows,
		Postfix:   reg.PostfixOperators(),
		Functions: reg.Functions(),
	}
}

// writeOpsReport prints the plain-text listing. Infix operators appear one
// per row because they carry parse attributes the other tables lack.
func writeOpsReport(w io.Writer, report opsReport) {
	fmt.Fprintln(w, "prefix:", strings.Join(report.Prefix, " "))

	fmt.Fprintln(w, "infix:")

	for _, row := range report.Infix {
		fmt.Fprintf(w, "  %-10s %3d  %-5s  %s\n",
			row.Op, row.Prec, row.Assoc, row.Class)
	}

	fmt.Fprintln(w, "postfix:", strings.Join(report.Postfix, " "))
	fmt.Fprintln(w, "functions:", strings.Join(report.Functions, " "))
}
