package ui

import (
	"github.com/pterm/pterm"
	"os"
)

func ExamplePrintfln() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()

	msg := "Loop period: %d ms"
	a := 10
	Printfln(msg, a)
	// Output:
	// Loop period: 10 ms
}

func ExampleDebug() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()
	SetDebugEnabled(true)

	msg := "Breath %d closed"
	a := 5
	Debug(msg, a)
	// Output:
	// DEBUG: Breath 5 closed
}

func ExampleInfo() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()

	msg := "Starting control loop with %d ms period"
	a := 10
	Info(msg, a)
	// Output:
	// INFO: Starting control loop with 10 ms period
}

func ExampleWarning() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()

	msg := "Loop iteration took %d ms"
	a := 900
	Warning(msg, a)
	// Output:
	// WARNING: Loop iteration took 900 ms
}

func ExampleError() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()

	msg := "Unable to flush data log: %v"
	a := os.ErrClosed
	Error(msg, a)
	// Output:
	// ERROR: Unable to flush data log: file already closed
}
