// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	commonerrors "semantics-workers/internal/common/errors"
	"semantics-workers/internal/common/validation"
	"semantics-workers/pkg/registry"
)

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	addPath := addCmd.String("path", "configs/activity-registry.json", "Path to registry file")
	idAdd := addCmd.String("id", "", "Activity ID (e.g., semantics-description)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., Semantics Description)")
	description := addCmd.String("description", "", "Description")
	category := addCmd.String("category", "", "Category (e.g., semantics)")
	taskType := addCmd.String("taskType", "", "Camunda Task Type (e.g., semantics-description)")
	version := addCmd.String("version", "1.0.0", "Version")
	timeout := addCmd.String("timeout", "2m", "Job timeout as a Go duration")

	updatePath := updateCmd.String("path", "configs/activity-registry.json", "Path to registry file")
	idUpdate := updateCmd.String("id", "", "Activity ID to update")
	field := updateCmd.String("field", "", "Field to update (version, timeout, retries, ...)")
	value := updateCmd.String("value", "", "New value for the field")

	validatePath := validateCmd.String("path", "configs/activity-registry.json", "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *displayName == "" || *description == "" || *category == "" || *taskType == "" {
			fmt.Println("Error: id, displayName, description, category, and taskType are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		activity := registry.Activity{
			ID:           *idAdd,
			DisplayName:  *displayName,
			Description:  *description,
			Category:     *category,
			Version:      *version,
			TaskType:     *taskType,
			InputSchema:  map[string]interface{}{},
			OutputSchema: map[string]interface{}{},
			ErrorCodes:   []string{},
			Timeout:      *timeout,
		}
		if err := addActivity(*addPath, activity); err != nil {
			fmt.Printf("Error adding activity: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added activity: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateActivity(*updatePath, *idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating activity: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated activity %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		n, err := validateRegistry(*validatePath)
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d activities.\n", n)

	case "help":
		fallthrough
	default:
		help()
	}
}

func addActivity(path string, activity registry.Activity) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = registry.New()
	}
	if err := reg.Add(activity); err != nil {
		return err
	}
	return reg.Save(path)
}

func updateActivity(path, id, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Update(id, field, value); err != nil {
		return err
	}
	return reg.Save(path)
}

// validateRegistry also compiles every input and output schema so a broken one fails
// here instead of at job time, and rejects error codes the workers never throw.
func validateRegistry(path string) (int, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return 0, fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return 0, err
	}

	known := make(map[string]bool, len(commonerrors.BPMNErrorMapping))
	for _, code := range commonerrors.BPMNErrorMapping {
		known[code] = true
	}

	for _, a := range reg.Activities {
		if _, err := validation.Validate(a.InputSchema, map[string]interface{}{}); err != nil {
			return 0, fmt.Errorf("activity %s input schema: %w", a.ID, err)
		}
		if _, err := validation.Validate(a.OutputSchema, map[string]interface{}{}); err != nil {
			return 0, fmt.Errorf("activity %s output schema: %w", a.ID, err)
		}
		for _, code := range a.ErrorCodes {
			if !known[code] {
				return 0, fmt.Errorf("activity %s: unknown error code %s", a.ID, code)
			}
		}
	}
	return len(reg.Activities), nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new activity to the registry
  update   Update an existing activity's field
  validate Validate the registry file
  help     Show this help message

Examples:
  registry-updater add -id semantics-description -displayName "Semantics Description" -description "Describes MDL models" -category semantics -taskType semantics-description
  registry-updater update -id semantics-description -field timeout -value 3m
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for more information about a command.
` + "\n")
}
