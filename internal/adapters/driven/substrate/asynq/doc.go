// Package asynq provides a Redis-backed execution substrate built on
// github.com/hibiken/asynq.
//
// The dashboard side enqueues one asynq task per call, with the function name
// as the task type and the JSON-encoded argument tuple as the payload. A
// Worker process consumes the queue and runs each task through the task
// executor, writing the result payload back through asynq's result writer.
// Tasks are never retried: a failed call is archived with its error message,
// which the handle reports as a domain.ExecutionError.
package asynq
