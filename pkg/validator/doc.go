/*
Package validator composes answer validators into the single ports.AnswerValidator
consumed by the flow engine.

A Chain consults its interceptors first (e.g. the interrupt detector), then a
validator routed to the current question ID (e.g. the vehicle lookup), and finally
the fallback (e.g. the natural-language validator). Every call is traced.
*/
package validator
