// cmd/tools/worker-generator/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	"listing-search-workers/internal/scaffold"
	"listing-search-workers/pkg/registry"
)

const modulePath = "listing-search-workers"

func main() {
	activity := flag.String("activity", "", "activity id from the registry (e.g. apply-property-filter)")
	root := flag.String("root", ".", "module root the worker package is written under")
	registryPath := flag.String("registry", registry.DefaultPath, "path to the activity registry JSON file")
	force := flag.Bool("force", false, "overwrite existing files")
	flag.Parse()

	if *activity == "" {
		fmt.Println("Usage: worker-generator --activity <id> [--root <dir>] [--registry <path>] [--force]")
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry from %s: %v\n", *registryPath, err)
		os.Exit(1)
	}

	var found *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == *activity {
			found = &reg.Activities[i]
			break
		}
	}
	if found == nil {
		fmt.Printf("Activity '%s' not found in registry %s\n", *activity, *registryPath)
		os.Exit(1)
	}

	dir := scaffold.Dir(*root, *found)
	written, err := scaffold.Write(dir, *found, modulePath, *force)
	for _, path := range written {
		fmt.Printf("Generated %s\n", path)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nWorker scaffold generated at %s\n", dir)
	fmt.Println("Next: implement Execute, register the worker in cmd/worker-manager/main.go and add it to configs/config.yaml.")
}
