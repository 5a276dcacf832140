// Command buildctl is the unified build front end for the FFTS library.
package main

import "github.com/ffts/buildctl/cmd/buildctl/internal"

func main() {
	internal.Execute()
}
