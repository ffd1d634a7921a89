// cmd/tools/registry-updater/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"college-recommender/internal/common/validation"
	"college-recommender/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add":
		err = runAdd(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	default:
		help()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runAdd(args []string) error {
	cmd := flag.NewFlagSet("add", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	id := cmd.String("id", "", "Activity ID (e.g., catalog.college.search)")
	displayName := cmd.String("displayName", "", "Display Name (e.g., Search Colleges)")
	description := cmd.String("description", "", "Description")
	category := cmd.String("category", "", "Category (e.g., catalog)")
	taskType := cmd.String("taskType", "", "Camunda Task Type (e.g., search-colleges)")
	version := cmd.String("version", "1.0.0", "Version")
	status := cmd.String("status", registry.StatusPlanned, "Implementation Status (planned, in-progress, completed, verified)")
	cmd.Parse(args)

	if *id == "" || *displayName == "" || *description == "" || *category == "" || *taskType == "" {
		cmd.Usage()
		return errors.New("id, displayName, description, category, and taskType are required for add")
	}
	if err := validation.ValidateActivityNaming(*id); err != nil {
		return err
	}

	reg, err := registry.LoadRegistry(*path)
	if errors.Is(err, fs.ErrNotExist) {
		reg = &registry.ActivityRegistry{Version: "1.0.0"}
	} else if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	if _, exists := reg.FindByID(*id); exists {
		return fmt.Errorf("activity with ID %s already exists", *id)
	}
	if _, exists := reg.FindByTaskType(*taskType); exists {
		return fmt.Errorf("task type %s is already registered", *taskType)
	}

	reg.Activities = append(reg.Activities, registry.Activity{
		ID:                   *id,
		DisplayName:          *displayName,
		Description:          *description,
		Category:             *category,
		Version:              *version,
		TaskType:             *taskType,
		ImplementationStatus: *status,
		InputSchema:          map[string]interface{}{"type": "object"},
		OutputSchema:         map[string]interface{}{"type": "object"},
		ErrorCodes:           []string{"INVALID_INPUT", "PARSE_ERROR", "INTERNAL_FAILURE"},
		Timeout:              "10s",
		Workflows:            []string{},
		Tags:                 []string{},
	})

	if err := save(reg, *path); err != nil {
		return err
	}
	fmt.Printf("Added activity: %s\n", *id)
	return nil
}

func runUpdate(args []string) error {
	cmd := flag.NewFlagSet("update", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	id := cmd.String("id", "", "Activity ID to update")
	field := cmd.String("field", "", "Field to update (status, version, etc.)")
	value := cmd.String("value", "", "New value for the field")
	cmd.Parse(args)

	if *id == "" || *field == "" || *value == "" {
		cmd.Usage()
		return errors.New("id, field, and value are required for update")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	activity, ok := reg.FindByID(*id)
	if !ok {
		return fmt.Errorf("activity with ID %s not found", *id)
	}
	if err := setField(activity, *field, *value); err != nil {
		return err
	}

	if err := save(reg, *path); err != nil {
		return err
	}
	fmt.Printf("Updated activity %s, field %s to %s\n", *id, *field, *value)
	return nil
}

func setField(a *registry.Activity, field, value string) error {
	switch field {
	case "status":
		a.ImplementationStatus = value
	case "version":
		a.Version = value
	case "displayName":
		a.DisplayName = value
	case "description":
		a.Description = value
	case "category":
		a.Category = value
	case "taskType":
		a.TaskType = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		a.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		a.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}

func runValidate(args []string) error {
	cmd := flag.NewFlagSet("validate", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	cmd.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	for _, a := range reg.Activities {
		if err := validation.ValidateActivityNaming(a.ID); err != nil {
			return fmt.Errorf("activity %s: %w", a.ID, err)
		}
	}
	if _, err := validation.NewSchemaValidator(reg); err != nil {
		return err
	}

	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func save(reg *registry.ActivityRegistry, path string) error {
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return registry.SaveRegistry(path, reg)
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new activity to the registry
  update   Update an existing activity's field
  validate Validate the registry file and compile its schemas
  help     Show this help message

Examples:
  registry-updater add -id catalog.college.search -displayName "Search Colleges" -description "Quick college search" -category catalog -taskType search-colleges
  registry-updater update -id catalog.college.search -field status -value verified
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for more information about a command.
` + "\n")
}
