package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"
)

// AdminLogin renders the password form. showError flags a failed attempt.
func AdminLogin(p Page, showError bool, csrfToken string) templ.Component {
	return Layout(p, component(func(ctx context.Context, w *writer) error {
		w.raw(`<section class="admin"><h1>Admin</h1>`)
		if showError {
			w.raw(`<p class="notice notice--error" role="alert">Wrong password.</p>`)
		}
		w.raw(`<form method="post" action="/admin/login/">`)
		writeCSRF(w, csrfToken)
		w.raw(`<label for="password">Password</label>`)
		w.raw(`<input id="password" name="password" type="password" autocomplete="current-password" required>`)
		w.raw(`<button type="submit">Sign in</button></form></section>`)
		return nil
	}))
}

// AdminDashboard renders the content status and the refresh action.
func AdminDashboard(p Page, st AdminStatus, message, csrfToken string) templ.Component {
	return Layout(p, component(func(ctx context.Context, w *writer) error {
		w.raw(`<section class="admin"><h1>Status</h1>`)
		if message != "" {
			w.raw(`<p class="notice" role="status">`)
			w.text(message)
			w.raw(`</p>`)
		}
		w.raw(`<table class="status"><tbody>`)
		row := func(k, v string) {
			w.raw(`<tr><th scope="row">`)
			w.text(k)
			w.raw(`</th><td>`)
			w.text(v)
			w.raw(`</td></tr>`)
		}
		row("Content source", st.Source)
		row("Cache backend", st.CacheBackend)
		if st.Breaker != "" {
			row("Content store circuit", st.Breaker)
		}
		watching := "off"
		if st.Watching {
			watching = "on"
		}
		row("Watching files", watching)
		row("Collections", strconv.Itoa(st.Collections))
		row("Photos", strconv.Itoa(st.Photos))
		row("Series", strconv.Itoa(st.Series))
		row("Galleries", strconv.Itoa(st.Galleries))
		row("Info pages", strconv.Itoa(st.InfoPages))
		if !st.CheckedAt.IsZero() {
			row("Checked at", st.CheckedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
		}
		w.raw(`</tbody></table>`)

		w.raw(`<form method="post" action="/admin/refresh/">`)
		writeCSRF(w, csrfToken)
		w.raw(`<button type="submit">Refresh content</button></form>`)
		w.raw(`<form method="post" action="/admin/logout/">`)
		writeCSRF(w, csrfToken)
		w.raw(`<button type="submit" class="secondary">Sign out</button></form></section>`)
		return nil
	}))
}

func writeCSRF(w *writer, token string) {
	w.raw(`<input type="hidden" name="_csrf"`)
	w.attr("value", token)
	w.raw(`>`)
}
