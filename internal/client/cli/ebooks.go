package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"
)

func (a *App) Upload(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if len(args) != 1 {
		return errors.New("usage: upload <file>")
	}

	res, err := a.ebooks.Upload(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Uploaded %s (%s)\n", res.ObjectPath, res.Status)
	return nil
}

func (a *App) List(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	list, err := a.ebooks.List(ctx)
	if err != nil {
		return err
	}
	if list.Count == 0 {
		fmt.Fprintln(a.out, "No e-books yet")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OBJECT PATH\tFILE\tSIZE\tUPLOADED")
	for _, e := range list.PDFs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.ObjectPath, e.FileName, e.SizeBytes, e.CreatedAt.Local().Format(time.DateTime))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d e-book(s)\n", list.Count)
	return nil
}

func (a *App) View(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if len(args) != 1 {
		return errors.New("usage: view <objectPath>")
	}

	v, err := a.ebooks.View(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, v.URL)
	fmt.Fprintf(a.out, "valid for %s (until %s)\n", time.Duration(v.ExpiresIn)*time.Second, v.ExpiresAt.Local().Format(time.DateTime))
	return nil
}
