package photoengine

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (a *App) handleAdmin(c echo.Context) error {
	return Render(c, a.Views.AdminDashboard(CsrfToken(c)))
}

// Gallery

func (a *App) handleGalleryList(c echo.Context) error {
	if category := c.QueryParam("category"); category != "" {
		return c.JSON(http.StatusOK, a.Store.ListImagesByCategory(category))
	}
	return c.JSON(http.StatusOK, a.Store.ListImages())
}

func (a *App) handleGalleryCreate(c echo.Context) error {
	var in GalleryImageInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	img, err := a.Store.CreateImage(in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, img)
}

func (a *App) handleGalleryUpdate(c echo.Context) error {
	var in GalleryImageInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	img, err := a.Store.UpdateImage(c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, img)
}

func (a *App) handleGalleryDelete(c echo.Context) error {
	if err := a.Store.DeleteImage(c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleGalleryHero(c echo.Context) error {
	var in struct {
		IsHero bool `json:"isHero"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := a.Store.SetHero(c.Param("id"), in.IsHero); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleGalleryReorder(c echo.Context) error {
	var in struct {
		Category string   `json:"category"`
		IDs      []string `json:"ids"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := a.Store.ReorderCategory(in.Category, in.IDs); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no image file provided")
	}
	if file.Size > maxUploadSize {
		return echo.NewHTTPError(http.StatusBadRequest, "file too large (max 25MB)")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	processed, err := SaveUpload(a.Config.PublicDir, time.Now().UTC().Format("2006/01"), src, file.Filename)
	if err != nil {
		return err
	}
	a.Log.Info("image uploaded",
		zap.String("src", processed.Src),
		zap.Int("width", processed.Width),
		zap.Int("height", processed.Height))
	return c.JSON(http.StatusCreated, processed)
}

// Blog

func (a *App) handlePostList(c echo.Context) error {
	return c.JSON(http.StatusOK, a.Store.ListPosts())
}

func (a *App) handlePostGet(c echo.Context) error {
	slug := c.Param("slug")
	post, err := a.Store.GetPost(slug)
	if err != nil {
		return err
	}
	body, err := a.Store.PostBody(slug)
	if err != nil {
		body = ""
	}
	return c.JSON(http.StatusOK, struct {
		BlogPost
		Body string `json:"body"`
	}{post, body})
}

func (a *App) handlePostCreate(c echo.Context) error {
	var in BlogPostInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	post, err := a.Store.CreatePost(in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

func (a *App) handlePostUpdate(c echo.Context) error {
	post, err := a.Store.GetPost(c.Param("slug"))
	if err != nil {
		return err
	}
	var in BlogPostInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	updated, err := a.Store.UpdatePost(post.ID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handlePostDelete(c echo.Context) error {
	post, err := a.Store.GetPost(c.Param("slug"))
	if err != nil {
		return err
	}
	if err := a.Store.DeletePost(post.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Pages, theme, and item documents

func (a *App) handlePageGet(c echo.Context) error {
	page, err := a.Store.GetPage(c.Param("key"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (a *App) handlePageSave(c echo.Context) error {
	var page Page
	if err := c.Bind(&page); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := a.Store.SavePage(c.Param("key"), page); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleThemeGet(c echo.Context) error {
	return c.JSON(http.StatusOK, a.Store.Theme())
}

func (a *App) handleThemeSave(c echo.Context) error {
	var theme map[string]any
	if err := c.Bind(&theme); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := a.Store.SaveTheme(theme); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleItemsGet(c echo.Context) error {
	items, err := a.Store.Items(c.Param("doc"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (a *App) handleItemsSave(c echo.Context) error {
	var items []map[string]any
	if err := c.Bind(&items); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := a.Store.SaveItems(c.Param("doc"), items); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Media

func (a *App) handleMediaList(c echo.Context) error {
	return c.JSON(http.StatusOK, a.Store.ListMedia())
}

func (a *App) handleMediaDetach(c echo.Context) error {
	var in struct {
		URL   string `json:"url"`
		Usage Usage  `json:"usage"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(in.URL) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}
	if err := a.Store.Detach(in.URL, in.Usage); err != nil {
		return err
	}
	a.Log.Info("media detached",
		zap.String("url", in.URL),
		zap.String("type", in.Usage.Type),
		zap.String("owner", in.Usage.Owner))
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleIntegrity(c echo.Context) error {
	issues := a.Store.CheckIntegrity()
	if issues == nil {
		issues = []IntegrityIssue{}
	}
	return c.JSON(http.StatusOK, issues)
}
