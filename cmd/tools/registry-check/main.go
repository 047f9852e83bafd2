// cmd/tools/registry-check/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"underwriting-workers/pkg/registry"

	aa "underwriting-workers/internal/workers/underwriting/advance-application"
	co "underwriting-workers/internal/workers/underwriting/compute-offer"
	el "underwriting-workers/internal/workers/underwriting/export-lead"
	vf "underwriting-workers/internal/workers/underwriting/validate-field"
)

// taskTypes are the job types cmd/worker-manager subscribes to.
var taskTypes = []string{aa.TaskType, vf.TaskType, co.TaskType, el.TaskType}

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validatePath := validateCmd.String("path", "configs/activities.json", "Path to registry file")

	showCmd := flag.NewFlagSet("show", flag.ExitOnError)
	showPath := showCmd.String("path", "configs/activities.json", "Path to registry file")
	showTask := showCmd.String("taskType", "", "Task type to print")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(*validatePath)
		if err != nil {
			fmt.Printf("Error loading registry: %v\n", err)
			os.Exit(1)
		}
		if err := reg.Check(taskTypes); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		for _, a := range reg.Activities {
			if len(a.ErrorCodes) == 0 {
				fmt.Printf("Warning: %s lists no error codes\n", a.TaskType)
			}
		}
		fmt.Printf("Registry validation passed (%d activities).\n", len(reg.Activities))

	case "show":
		showCmd.Parse(os.Args[2:])
		if *showTask == "" {
			fmt.Println("Error: taskType is required for show.")
			showCmd.Usage()
			os.Exit(1)
		}
		reg, err := registry.LoadRegistry(*showPath)
		if err != nil {
			fmt.Printf("Error loading registry: %v\n", err)
			os.Exit(1)
		}
		activity, ok := reg.Find(*showTask)
		if !ok {
			fmt.Printf("No activity for task type %s\n", *showTask)
			os.Exit(1)
		}
		out, _ := json.MarshalIndent(activity, "", "  ")
		fmt.Println(string(out))

	default:
		help()
	}
}

func help() {
	fmt.Println("Usage: registry-check <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  validate  Check that every worker task type is documented")
	fmt.Println("  show      Print one activity entry")
}
