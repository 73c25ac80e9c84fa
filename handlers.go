package photoengine

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (a *App) handleHome(c echo.Context) error {
	categories := a.Store.GalleryCategories()
	var heroes []GalleryImage
	for _, cat := range categories {
		for _, img := range a.Store.ListImagesByCategory(cat) {
			if img.IsHero {
				heroes = append(heroes, img)
				break
			}
		}
	}
	featured := a.Store.FeaturedPosts()
	return Render(c, a.Views.Home(categories, heroes, featured, a.Config.URL))
}

func (a *App) handleGallery(c echo.Context) error {
	category := c.Param("category")
	images := a.Store.ListImagesByCategory(category)
	if len(images) == 0 {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	return Render(c, a.Views.Gallery(NormalizeCategory(category), images))
}

func (a *App) handleBlog(c echo.Context) error {
	category := c.Param("category")
	posts := a.Store.ListPosts()
	if category != "" {
		var filtered []BlogPost
		for _, p := range posts {
			for _, pc := range p.Categories {
				if pc == category {
					filtered = append(filtered, p)
					break
				}
			}
		}
		posts = filtered
	}
	return Render(c, a.Views.Blog(posts, category, BlogCategories))
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	post, err := a.Store.GetPost(slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	body, err := a.Store.PostBody(slug)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return Render(c, a.Views.Post(post, body, BlogPostingJsonLD(post, a.Config)))
}

func (a *App) handlePage(key string) echo.HandlerFunc {
	return func(c echo.Context) error {
		page, err := a.Store.GetPage(key)
		if err != nil {
			return err
		}
		return Render(c, a.Views.Page(key, page))
	}
}

func (a *App) handleSitemap(c echo.Context) error {
	return a.renderSitemap(c)
}

func (a *App) handleFeed(c echo.Context) error {
	return a.renderRSS(c, a.Store.ListPosts())
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.Config.PublicDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(a.Config.PublicDir + "/robots.txt")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	reqPath := c.Request().URL.Path

	// Admin API and beacons speak JSON; everything else renders pages.
	isAPI := strings.HasPrefix(reqPath, "/api/") || strings.HasPrefix(reqPath, "/admin/api/")

	var code int
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	} else {
		code = httpStatus(err)
	}

	if code >= http.StatusInternalServerError {
		a.Log.Error("server error", zap.Error(err), zap.String("path", reqPath))
	}

	if isAPI {
		msg := http.StatusText(code)
		if code < http.StatusInternalServerError {
			msg = err.Error()
		}
		_ = c.JSON(code, map[string]string{"error": msg})
		return
	}

	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	case code >= http.StatusInternalServerError:
		_ = RenderStatus(c, code, a.Views.ServerError())
	default:
		_ = c.String(code, http.StatusText(code))
	}
}
