package command

import (
	"github.com/urfave/cli/v2"

	"github.com/harshitprakash/max-education-software-sub000/internal/cli/output"
	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
)

// ProfileCommand returns the profile command. Without a subcommand it shows
// the student profile; its subcommands manage backend profiles.
func ProfileCommand() *cli.Command {
	return &cli.Command{
		Name:   "profile",
		Usage:  "Show your student profile, or manage backend profiles",
		Flags:  outputFlags(),
		Action: guarded(studentProfile),
		Subcommands: []*cli.Command{
			profileListCommand(),
			profileUseCommand(),
			profileAddCommand(),
			profileRemoveCommand(),
		},
	}
}

func studentProfile(c *cli.Context, rt *Runtime) error {
	student, err := rt.Portal.Profile(c.Context)
	if err != nil {
		return err
	}

	return render(c, output.View{Data: student, Build: func(bool) *output.Table {
		t := output.NewTable("FIELD", "VALUE")
		t.AddRow("Name", output.Cell(student.DisplayName()))
		t.AddRow("Student code", output.Cell(student.StudentCode))
		t.AddRow("Email", output.Cell(student.Email))
		t.AddRow("Phone", output.Cell(student.Phone))
		t.AddRow("Program", output.Cell(student.Program))
		t.AddRow("Batch", output.Cell(student.Batch))
		t.AddRow("Enrolled", output.Cell(student.EnrollmentDate))
		t.AddRow("Address", output.Cell(student.Address))
		return t
	}})
}

// CoursesCommand returns the courses command.
func CoursesCommand() *cli.Command {
	return &cli.Command{
		Name:   "courses",
		Usage:  "List your enrolled courses",
		Flags:  outputFlags(),
		Action: guarded(courses),
	}
}

func courses(c *cli.Context, rt *Runtime) error {
	enrollments, err := rt.Portal.Courses(c.Context)
	if err != nil {
		return err
	}

	return render(c, output.View{Data: enrollments, Build: func(wide bool) *output.Table {
		return enrollmentTable(enrollments, wide)
	}})
}

func enrollmentTable(enrollments []domain.Enrollment, wide bool) *output.Table {
	headers := []string{"COURSE", "STATUS", "PROGRESS"}
	if wide {
		headers = append(headers, "CODE", "BATCH", "INSTRUCTOR", "ENROLLED", "CERTIFICATE")
	}

	t := output.NewTable(headers...)
	for _, e := range enrollments {
		row := []string{
			output.Cell(e.Course.Title),
			output.Cell(e.Status),
			output.Bar(e.Progress, output.DefaultBarWidth),
		}
		if wide {
			row = append(row,
				output.Cell(e.Course.Code),
				output.Cell(e.Batch),
				output.Cell(e.Instructor),
				output.Cell(e.EnrolledOn),
				output.Cell(e.Certificate),
			)
		}
		t.AddRow(row...)
	}
	return t
}

// FeesCommand returns the fees command.
func FeesCommand() *cli.Command {
	return &cli.Command{
		Name:   "fees",
		Usage:  "Show your fee statement",
		Flags:  outputFlags(),
		Action: guarded(fees),
	}
}

func fees(c *cli.Context, rt *Runtime) error {
	lines, err := rt.Portal.Fees(c.Context)
	if err != nil {
		return err
	}

	return render(c, output.View{Data: lines, Build: func(wide bool) *output.Table {
		return feeTable(lines, wide)
	}})
}

// feeTable lists fee lines followed by a total row.
func feeTable(lines []domain.Fee, wide bool) *output.Table {
	headers := []string{"DESCRIPTION", "AMOUNT", "PAID", "BALANCE", "DUE"}
	if wide {
		headers = append(headers, "STATUS", "PAID %")
	}

	var amount, paid float64
	t := output.NewTable(headers...)
	for _, f := range lines {
		amount += f.Amount
		paid += f.Paid
		row := []string{
			output.Cell(f.Description),
			output.Money(f.Amount),
			output.Money(f.Paid),
			output.Money(f.Balance()),
			output.Cell(f.DueDate),
		}
		if wide {
			row = append(row, output.Cell(f.Status), output.Bar(output.Ratio(f.Paid, f.Amount), 10))
		}
		t.AddRow(row...)
	}
	if len(lines) == 0 {
		return t
	}

	total := []string{"TOTAL", output.Money(amount), output.Money(paid), output.Money(amount - paid), ""}
	if wide {
		total = append(total, "", output.Bar(output.Ratio(paid, amount), 10))
	}
	t.AddRow(total...)
	return t
}

// CertificatesCommand returns the certificates command.
func CertificatesCommand() *cli.Command {
	return &cli.Command{
		Name:    "certificates",
		Aliases: []string{"certs"},
		Usage:   "List your certificates",
		Flags:   outputFlags(),
		Action:  guarded(certificates),
	}
}

func certificates(c *cli.Context, rt *Runtime) error {
	certs, err := rt.Portal.Certificates(c.Context)
	if err != nil {
		return err
	}

	return render(c, output.View{Data: certs, Build: func(wide bool) *output.Table {
		return certificateTable(certs, wide)
	}})
}

func certificateTable(certs []domain.Certificate, wide bool) *output.Table {
	headers := []string{"NUMBER", "COURSE", "ISSUED", "GRADE"}
	if wide {
		headers = append(headers, "STUDENT", "STATUS")
	}

	t := output.NewTable(headers...)
	for _, cert := range certs {
		row := []string{
			output.Cell(cert.CertificateNumber),
			output.Cell(cert.CourseName),
			output.Cell(cert.IssueDate),
			output.Cell(cert.Grade),
		}
		if wide {
			row = append(row, output.Cell(cert.StudentName), output.Cell(cert.Status))
		}
		t.AddRow(row...)
	}
	return t
}
