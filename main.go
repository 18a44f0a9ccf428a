/*
Copyright © 2026 Paulo Suderio
*/
package main

import "github.com/suderio/roundkeeper/cmd"

func main() {
	cmd.Execute()
}
