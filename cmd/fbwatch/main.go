package main

import (
	"context"
	"fbwatch/cmd/fbwatch/commands"
	"fbwatch/pkg/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext(context.Background()))
}
