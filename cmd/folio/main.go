package main

import (
	"github.com/mingdom/folio/cmd"
)

func main() {
	cmd.Execute()
}
