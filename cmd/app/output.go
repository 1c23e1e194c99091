package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/atvirokodosprendimai/pressroom/internal/domain"
)

func printJSON(v any) error {
	b, err := jsonMarshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printKV(rows [][2]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
	}
	_ = w.Flush()
}

func printTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Println("no results")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func accountLabel(item domain.Content) string {
	if item.Account != nil {
		return item.Account.Email
	}
	return strconv.FormatUint(uint64(item.AccountID), 10)
}

func tagNames(tags []domain.Tag) string {
	if len(tags) == 0 {
		return "-"
	}
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return strings.Join(names, ",")
}

func printAccounts(items []domain.Account) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(item.ID), 10),
			item.FirstName + " " + item.LastName,
			item.Email,
			formatTime(item.CreatedAt),
		})
	}
	printTable([]string{"ID", "NAME", "EMAIL", "CREATED_AT"}, rows)
}

func printAccountDetail(item domain.Account) {
	profile := "-"
	if item.Profile != nil {
		profile = item.Profile.Description
	}
	printKV([][2]string{
		{"id", strconv.FormatUint(uint64(item.ID), 10)},
		{"name", item.FirstName + " " + item.LastName},
		{"email", item.Email},
		{"profile", profile},
		{"contents", strconv.Itoa(len(item.Contents))},
		{"created_at", formatTime(item.CreatedAt)},
	})
	if len(item.Contents) > 0 {
		fmt.Println()
		printContents(item.Contents)
	}
}

func printProfile(item domain.Profile) {
	printKV([][2]string{
		{"id", strconv.FormatUint(uint64(item.ID), 10)},
		{"account_id", strconv.FormatUint(uint64(item.AccountID), 10)},
		{"description", item.Description},
		{"updated_at", formatTime(item.UpdatedAt)},
	})
}

func printContents(items []domain.Content) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(item.ID), 10),
			accountLabel(item),
			item.Title,
			string(item.Status),
			tagNames(item.Tags),
			formatTime(item.CreatedAt),
		})
	}
	printTable([]string{"ID", "ACCOUNT", "TITLE", "STATUS", "TAGS", "CREATED_AT"}, rows)
}

func printContentDetail(item domain.Content) {
	printKV([][2]string{
		{"id", strconv.FormatUint(uint64(item.ID), 10)},
		{"account", accountLabel(item)},
		{"title", item.Title},
		{"status", string(item.Status)},
		{"tags", tagNames(item.Tags)},
		{"body", item.Body},
		{"created_at", formatTime(item.CreatedAt)},
	})
}

func printContentPage(page domain.ContentPage) {
	printContents(page.Items)
	fmt.Printf("page %d of %d\n", page.CurrentPage, page.TotalPages)
}

func printTags(items []domain.Tag) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(item.ID), 10),
			item.Name,
			formatTime(item.CreatedAt),
		})
	}
	printTable([]string{"ID", "NAME", "CREATED_AT"}, rows)
}
