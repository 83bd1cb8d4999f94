/*
Package threads runs units of work in isolated background execution
contexts, either child OS processes or in-process background goroutines,
behind a single worker handle API.

A Worker owns exactly one transport. Callers assign it code with Run or
RunScript, push data with Send, and observe results through typed event
subscriptions or a single-settlement Promise. The two transports are
interchangeable: the process transport exchanges framed envelopes with a
bootstrap child process, the thread transport passes envelopes to a
background goroutine and can move buffer ownership instead of copying.

# Usage

	worker, err := threads.Spawn(threads.WithTask(
		func(tc domain.TaskContext, args ...any) error {
			tc.Progress(0.5)
			tc.Done(args...)
			return nil
		},
	))
	if err != nil {
		log.Fatal(err)
	}
	defer worker.Kill()

	promise := worker.Promise()
	worker.Send("ping")

	values, err := promise.Await(context.Background())

Workers spawned with WithProcess run an external bootstrap command instead;
inherited --inspect flags are rewritten per spawn so debug ports never
collide.

This package is not a worker pool: each handle owns one background context
at a time, and no scheduling or load balancing happens here.
*/
package threads
