package main

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/photoengine"
)

// previewViews returns a bare-bones ViewFuncs set used by the serve command.
// Scaffolded projects replace all of this with their own templ templates.
func previewViews() photoengine.ViewFuncs {
	return photoengine.ViewFuncs{
		Home: func(categories []string, heroes []photoengine.GalleryImage, featured []photoengine.BlogPost, siteURL string) templ.Component {
			return page("Preview", func(w io.Writer) error {
				fmt.Fprintln(w, "<h1>Portfolio preview</h1><ul>")
				for _, cat := range categories {
					fmt.Fprintf(w, `<li><a href="/portfolio/%s/">%s</a></li>`, html.EscapeString(cat), html.EscapeString(cat))
				}
				fmt.Fprintln(w, "</ul><h2>Featured</h2><ul>")
				for _, p := range featured {
					fmt.Fprintf(w, `<li><a href="/blog/%s/">%s</a></li>`, html.EscapeString(p.Slug), html.EscapeString(p.Title))
				}
				fmt.Fprintln(w, "</ul>")
				return nil
			})
		},
		Gallery: func(category string, images []photoengine.GalleryImage) templ.Component {
			return page(category, func(w io.Writer) error {
				fmt.Fprintf(w, "<h1>%s</h1>\n", html.EscapeString(category))
				for _, img := range images {
					fmt.Fprintf(w, `<figure><img src="%s" alt="%s"/><figcaption>%s</figcaption></figure>`+"\n",
						html.EscapeString(img.Thumb), html.EscapeString(img.Title), html.EscapeString(img.Title))
				}
				return nil
			})
		},
		Blog: func(posts []photoengine.BlogPost, activeCategory string, categories []string) templ.Component {
			return page("Blog", func(w io.Writer) error {
				fmt.Fprintln(w, "<h1>Blog</h1><ul>")
				for _, p := range posts {
					fmt.Fprintf(w, `<li><a href="/blog/%s/">%s</a> <time>%s</time></li>`+"\n",
						html.EscapeString(p.Slug), html.EscapeString(p.Title), html.EscapeString(p.Date))
				}
				fmt.Fprintln(w, "</ul>")
				return nil
			})
		},
		Post: func(post photoengine.BlogPost, body string, jsonLD string) templ.Component {
			return page(post.Title, func(w io.Writer) error {
				fmt.Fprintf(w, "<article><h1>%s</h1><time>%s</time>\n", html.EscapeString(post.Title), html.EscapeString(post.Date))
				// Post bodies are stored pre-sanitized.
				io.WriteString(w, body)
				fmt.Fprintf(w, "</article>\n<script type=\"application/ld+json\">%s</script>\n", jsonLD)
				return nil
			})
		},
		Page: func(key string, p photoengine.Page) templ.Component {
			return page(p.Title, func(w io.Writer) error {
				fmt.Fprintf(w, "<h1>%s</h1>\n", html.EscapeString(p.Title))
				io.WriteString(w, p.HTML)
				return nil
			})
		},
		AdminDashboard: func(csrfToken string) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				_, err := fmt.Fprintf(w, `<!DOCTYPE html><html><head><meta charset="utf-8"/><meta name="csrf-token" content="%s"/><title>Admin</title><script src="/public/dashboard.js" defer></script></head><body><h1>Admin</h1><div id="app"></div></body></html>`,
					html.EscapeString(csrfToken))
				return err
			})
		},
		NotFound: func() templ.Component {
			return page("Not Found", func(w io.Writer) error {
				_, err := io.WriteString(w, "<h1>404</h1><p>That page does not exist.</p>")
				return err
			})
		},
		ServerError: func() templ.Component {
			return page("Error", func(w io.Writer) error {
				_, err := io.WriteString(w, "<h1>500</h1><p>Something went wrong.</p>")
				return err
			})
		},
	}
}

func page(title string, body func(io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"/><title>%s</title></head><body>`, html.EscapeString(title)); err != nil {
			return err
		}
		if err := body(w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}
