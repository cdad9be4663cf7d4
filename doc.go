/*
Package tapevm is a resumable interpreter for the eight-instruction tape language
(> < + - . , [ ]) running against a 30,000-cell byte tape.

Execution is stateless on the host side. When a program reaches ',' the machine
suspends and the whole state is returned to the caller as an opaque token. A later
call hands the token back together with one input value and execution continues
from exactly where it stopped.

# Usage

	eng := tapevm.New()

	resp, err := eng.Execute(ctx, tapevm.Request{Program: ",."})
	if err != nil {
		log.Fatal(err)
	}

	// resp.AwaitingInput is true: store resp.NextState and ask for a value.
	in := "65"
	resp, err = eng.Execute(ctx, tapevm.Request{PriorState: resp.NextState, Input: &in})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(resp.Output) // A

Tokens are base64 JSON by default. Use WithCodec with a token.SealedCodec when
callers must not be able to read or forge them.
*/
package tapevm
