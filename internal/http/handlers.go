// Package http exposes the maintenance log over a fiber JSON API.
package http

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/domain"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/export"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/qr"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/repository"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/service"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/views"
)

func Register(app *fiber.App, svcs *service.Services) {
	api := app.Group("/api")
	registerEquipment(api, svcs)
	registerRecords[service.BrushInput, views.BrushView](api, "carbon-brush", svcs.Brush)
	registerRecords[service.WindingInput, views.WindingView](api, "winding-resistance", svcs.Winding)
	registerRecords[service.ThermographyInput, views.ThermographyView](api, "thermography", svcs.Thermography)

	api.Post("/scan", func(c *fiber.Ctx) error {
		var body struct {
			Payload string `json:"payload"`
		}
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, err)
		}
		res, ok, err := svcs.Equipment.Scan(c.UserContext(), body.Payload)
		if err != nil {
			return fail(c, err)
		}
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "equipment not found", "payload": body.Payload})
		}
		return c.JSON(res)
	})

	api.Post("/alerts/:alertId/ack", func(c *fiber.Ctx) error {
		if err := svcs.Equipment.AcknowledgeAlert(c.UserContext(), c.Params("alertId")); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	api.Post("/exports/monthly", func(c *fiber.Ctx) error {
		month := c.Query("month")
		if err := svcs.Exports.RequestMonthly(c.UserContext(), month); err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "queued", "month": month})
	})
}

func registerEquipment(api fiber.Router, svcs *service.Services) {
	g := api.Group("/equipment")

	g.Get("/", func(c *fiber.Ctx) error {
		items, err := svcs.Equipment.List(c.UserContext(), domain.EquipmentType(c.Query("type")))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(items)
	})
	g.Post("/", func(c *fiber.Ctx) error {
		var in service.EquipmentInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, err)
		}
		e, err := svcs.Equipment.Create(c.UserContext(), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(e)
	})
	g.Get("/identifiers", func(c *fiber.Ctx) error {
		ids, err := svcs.Equipment.Identifiers(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(ids)
	})
	g.Get("/tag/:tag", func(c *fiber.Ctx) error {
		e, err := svcs.Repos.GetEquipmentByTag(c.UserContext(), c.Params("tag"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(e)
	})
	g.Get("/:id", withID(func(c *fiber.Ctx, id int64) error {
		e, err := svcs.Equipment.Get(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(e)
	}))
	g.Put("/:id", withID(func(c *fiber.Ctx, id int64) error {
		var in service.EquipmentInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, err)
		}
		e, err := svcs.Equipment.Update(c.UserContext(), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(e)
	}))
	g.Delete("/:id", withID(func(c *fiber.Ctx, id int64) error {
		if err := svcs.Equipment.Delete(c.UserContext(), id); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}))
	g.Get("/:id/qr", withID(func(c *fiber.Ctx, id int64) error {
		png, err := svcs.Equipment.QRCode(c.UserContext(), id, c.QueryInt("size", qr.DefaultSize), c.Query("format") == "url")
		if err != nil {
			return fail(c, err)
		}
		c.Type("png")
		return c.Send(png)
	}))
	g.Get("/:id/status", withID(func(c *fiber.Ctx, id int64) error {
		st, err := svcs.Equipment.Status(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(st)
	}))
	g.Get("/:id/alerts", withID(func(c *fiber.Ctx, id int64) error {
		alerts, err := svcs.Equipment.Alerts(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(alerts)
	}))
	g.Get("/:id/forecast", withID(func(c *fiber.Ctx, id int64) error {
		f, err := svcs.Equipment.Forecast(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"forecast": f})
	}))
	g.Get("/:id/service-plan", withID(func(c *fiber.Ctx, id int64) error {
		plan, err := svcs.Maintenance.ServicePlan(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(plan)
	}))
}

// recordService is the CRUD and export contract shared by the record kinds.
type recordService[In, V any] interface {
	List(ctx context.Context, f domain.RecordFilter) ([]V, error)
	Get(ctx context.Context, id int64) (V, error)
	Create(ctx context.Context, in In) (V, error)
	Update(ctx context.Context, id int64, in In) (V, error)
	Delete(ctx context.Context, id int64) error
	Export(ctx context.Context, f domain.RecordFilter) ([]byte, error)
	ExportOne(ctx context.Context, id int64) ([]byte, error)
}

func registerRecords[In, V any](api fiber.Router, name string, svc recordService[In, V]) {
	g := api.Group("/" + name)

	g.Get("/", func(c *fiber.Ctx) error {
		f, err := filterFrom(c)
		if err != nil {
			return badRequest(c, err)
		}
		items, err := svc.List(c.UserContext(), f)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(items)
	})
	g.Get("/export", func(c *fiber.Ctx) error {
		f, err := filterFrom(c)
		if err != nil {
			return badRequest(c, err)
		}
		data, err := svc.Export(c.UserContext(), f)
		if err != nil {
			return fail(c, err)
		}
		suffix := "all"
		if f.TagNo != "" {
			suffix = f.TagNo
		}
		return sendSpreadsheet(c, fmt.Sprintf("%s-%s.xlsx", name, suffix), data)
	})
	g.Post("/", func(c *fiber.Ctx) error {
		var in In
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, err)
		}
		v, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(v)
	})
	g.Get("/:id", withID(func(c *fiber.Ctx, id int64) error {
		v, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(v)
	}))
	g.Get("/:id/export", withID(func(c *fiber.Ctx, id int64) error {
		data, err := svc.ExportOne(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return sendSpreadsheet(c, fmt.Sprintf("%s-%d.xlsx", name, id), data)
	}))
	g.Put("/:id", withID(func(c *fiber.Ctx, id int64) error {
		var in In
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, err)
		}
		v, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(v)
	}))
	g.Delete("/:id", withID(func(c *fiber.Ctx, id int64) error {
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}))
}

func withID(h func(c *fiber.Ctx, id int64) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil || id <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
		}
		return h(c, id)
	}
}

// filterFrom reads tag, equipment_id, from, to, limit and order. Dates are
// YYYY-MM-DD and both ends are inclusive.
func filterFrom(c *fiber.Ctx) (domain.RecordFilter, error) {
	f := domain.RecordFilter{
		TagNo:     strings.TrimSpace(c.Query("tag")),
		Ascending: c.Query("order") == "asc",
	}
	if v := c.Query("equipment_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, fmt.Errorf("invalid equipment_id %q", v)
		}
		f.EquipmentID = id
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, fmt.Errorf("invalid from date %q", v)
		}
		f.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, fmt.Errorf("invalid to date %q", v)
		}
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		f.To = &end
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, fmt.Errorf("invalid limit %q", v)
		}
		f.Limit = n
	}
	return f, nil
}

func sendSpreadsheet(c *fiber.Ctx, filename string, data []byte) error {
	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

func fail(c *fiber.Ctx, err error) error {
	code, msg := fiber.StatusInternalServerError, err.Error()
	switch {
	case errors.Is(err, repository.ErrNotFound):
		code, msg = fiber.StatusNotFound, "not found"
	case errors.Is(err, service.ErrValidation):
		code = fiber.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		code = fiber.StatusConflict
	case errors.Is(err, service.ErrUnavailable):
		code = fiber.StatusServiceUnavailable
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
