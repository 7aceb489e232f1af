// Command taglift is the exam-question classification agent CLI: it runs the
// unattended extraction loop, reports inventory progress, and manages the
// bank credential and response cache.
package main
