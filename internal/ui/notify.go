package ui

import "fmt"

// Notifier surfaces operation outcomes to the user. The contract
// clients call it instead of printing so tests can capture what a
// user would have seen.
type Notifier interface {
	Success(title, detail string)
	Failure(title, detail string)
	Warn(title, detail string)
}

// Toast prints styled notifications to stdout.
type Toast struct{}

func (Toast) Success(title, detail string) {
	fmt.Println(Success(title))
	if detail != "" {
		fmt.Println("  " + Meta(detail))
	}
}

func (Toast) Failure(title, detail string) {
	fmt.Println(Err(title))
	if detail != "" {
		fmt.Println("  " + Meta(detail))
	}
}

func (Toast) Warn(title, detail string) {
	fmt.Println(Warn(title))
	if detail != "" {
		fmt.Println("  " + Meta(detail))
	}
}

// Notice is one captured notification.
type Notice struct {
	Level  string // "success", "failure", "warn"
	Title  string
	Detail string
}

// Recorder captures notifications for assertions in tests.
type Recorder struct {
	Notices []Notice
}

func (r *Recorder) Success(title, detail string) {
	r.Notices = append(r.Notices, Notice{Level: "success", Title: title, Detail: detail})
}

func (r *Recorder) Failure(title, detail string) {
	r.Notices = append(r.Notices, Notice{Level: "failure", Title: title, Detail: detail})
}

func (r *Recorder) Warn(title, detail string) {
	r.Notices = append(r.Notices, Notice{Level: "warn", Title: title, Detail: detail})
}
