package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/harshitprakash/max-education-software-sub000/internal/cli/output"
	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
)

// CatalogCommand returns the public course catalog command.
func CatalogCommand() *cli.Command {
	return &cli.Command{
		Name:   "catalog",
		Usage:  "List the courses offered by the institute",
		Flags:  outputFlags(),
		Action: catalog,
	}
}

func catalog(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}
	list, err := rt.Catalog.Courses(c.Context)
	if err != nil {
		return err
	}

	return render(c, output.View{Data: list, Build: func(wide bool) *output.Table {
		headers := []string{"CODE", "TITLE", "DURATION", "FEE"}
		if wide {
			headers = append(headers, "CATEGORY", "DESCRIPTION")
		}
		t := output.NewTable(headers...)
		for _, course := range list {
			row := []string{
				output.Cell(course.Code),
				output.Cell(course.Title),
				output.Cell(course.Duration),
				output.Money(course.Fee),
			}
			if wide {
				row = append(row, output.Cell(course.Category), output.Cell(course.Description))
			}
			t.AddRow(row...)
		}
		return t
	}})
}

// VerifyCommand returns the certificate verification command.
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Verify a certificate by its number",
		ArgsUsage: "CERTIFICATE_NUMBER",
		Flags:     outputFlags(),
		Action:    verify,
	}
}

func verify(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}
	cert, err := rt.Catalog.VerifyCertificate(c.Context, c.Args().First())
	if err != nil {
		return err
	}

	return render(c, output.View{Data: cert, Build: func(bool) *output.Table {
		t := output.NewTable("FIELD", "VALUE")
		t.AddRow("Certificate", cert.CertificateNumber)
		t.AddRow("Student", output.Cell(cert.StudentName))
		t.AddRow("Course", output.Cell(cert.CourseName))
		t.AddRow("Issued", output.Cell(cert.IssueDate))
		t.AddRow("Grade", output.Cell(cert.Grade))
		t.AddRow("Status", output.Cell(cert.Status))
		return t
	}})
}

// ContactCommand returns the contact form command.
func ContactCommand() *cli.Command {
	return &cli.Command{
		Name:  "contact",
		Usage: "Send a message to the institute",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Your name", Required: true},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Reply address", Required: true},
			&cli.StringFlag{Name: "phone", Usage: "Phone number"},
			&cli.StringFlag{Name: "subject", Usage: "Subject"},
			&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Usage: "Message text", Required: true},
		},
		Action: contact,
	}
}

func contact(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}

	confirmation, err := rt.Catalog.SubmitContact(c.Context, domain.ContactMessage{
		Name:    c.String("name"),
		Email:   c.String("email"),
		Phone:   c.String("phone"),
		Subject: c.String("subject"),
		Message: c.String("message"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(outWriter(c), confirmation)
	return nil
}
