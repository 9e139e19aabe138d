//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

// Build compiles both executables into ./bin
func Build() error {
	mg.Deps(BuildDet01, BuildDet01Ana)
	fmt.Println("Compilation finished")
	return nil
}

// goCmd runs the go tool with cgo enabled, HDF5 needs it.
func goCmd(args ...string) *exec.Cmd {
	ldflags := os.Getenv("CGO_LDFLAGS")
	cflags := os.Getenv("CGO_CFLAGS")
	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(),
		"CGO_ENABLED=1",
		fmt.Sprintf("CGO_LDFLAGS=%s", ldflags),
		fmt.Sprintf("CGO_CFLAGS=%s", cflags))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

func BuildDet01() error {
	fmt.Println("Building det01 executable...")
	return goCmd("build", "-o", "./bin/det01", "./det01").Run()
}

func BuildDet01Ana() error {
	fmt.Println("Building det01ana executable...")
	return goCmd("build", "-o", "./bin/det01ana", "./det01ana").Run()
}

// Test runs the unit tests of every package
func Test() error {
	fmt.Println("Running tests...")
	return goCmd("test", "./...").Run()
}
