package main

import (
	"github.com/michaelbaranov/maintain-azuredatasync/cmd"

	_ "github.com/microsoft/go-mssqldb"
)

func main() {
	cmd.Execute()
}
