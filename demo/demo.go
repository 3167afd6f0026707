package demo

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sagarc03/switchyard"
	switchyardhttp "github.com/sagarc03/switchyard/http"
)

// FallbackMessage is the body of the catch-all GET route.
const FallbackMessage = "Sorry, this is an invalid URL."

// Register adds the routing, middleware and form demos to reg.
func Register(reg *switchyard.Registry) error {
	return errors.Join(
		registerRouting(reg),
		registerThings(reg),
		registerForm(reg),
	)
}

// RegisterFallback adds the "*" GET route. It must be registered last.
func RegisterFallback(reg *switchyard.Registry) error {
	return reg.Get("*", func(c *switchyard.Context, next switchyard.Next) {
		_ = c.String(http.StatusOK, FallbackMessage)
	})
}

func registerRouting(reg *switchyard.Registry) error {
	return errors.Join(
		reg.Get("/", hello),
		reg.Post("/", text("Got a POST request")),
		reg.Put("/user", text("Got a PUT request at /user")),
		reg.Delete("/user", text("Got a DELETE request at /user")),
		reg.All("/test", text("HTTP method doesn't have any effect on this route!")),
		reg.Get("/hello/*", helloWorld),

		reg.Get("/users/:userId/books/:bookId", func(c *switchyard.Context, next switchyard.Next) {
			_ = c.String(http.StatusOK, "userId: "+c.Param("userId")+" and bookId: "+c.Param("bookId"))
		}),
		reg.Get("/flights/:from-:to", params),
		reg.Get("/plantae/:genus.:species", params),
		reg.Get("/member/:memberId", params),
		reg.Get("/event/:id([0-9]{5})", func(c *switchyard.Context, next switchyard.Next) {
			_ = c.String(http.StatusOK, "id: "+c.Param("id"))
		}),

		reg.Get("/example/b", logStep("the response will be sent by the next function ..."), text("Hello from B!")),
		reg.Get("/example/c", logStep("CB0"), logStep("CB1"), text("Hello from C!")),

		reg.Path("/book").
			Get(text("Get a random book")).
			Post(text("Add a book")).
			Put(text("Update the book")).
			Err(),
	)
}

// registerThings mounts a /things sub-router with its own logger and a
// trailing middleware that runs after the handler has responded.
func registerThings(reg *switchyard.Registry) error {
	things := switchyard.NewRegistry(switchyard.RegistryConfig{})
	err := errors.Join(
		things.Use("/", func(c *switchyard.Context, next switchyard.Next) {
			c.Logger().Info("a request for things logged")
			next(nil)
		}),
		things.Get("/",
			func(c *switchyard.Context, next switchyard.Next) {
				_ = c.String(http.StatusOK, "Things")
				next(nil)
			},
			func(c *switchyard.Context, next switchyard.Next) {
				c.Logger().Info("things end")
			},
		),
		things.Get("/:thing", func(c *switchyard.Context, next switchyard.Next) {
			_ = c.String(http.StatusOK, "Thing: "+c.Param("thing"))
		}),
	)
	if err != nil {
		return err
	}
	return reg.Mount("/things", things)
}

func registerForm(reg *switchyard.Registry) error {
	return reg.Path("/form").
		Get(func(c *switchyard.Context, next switchyard.Next) {
			id := c.Query("id")
			if _, err := strconv.Atoi(id); id == "" || err != nil {
				_ = c.String(http.StatusOK, "received your request!")
				return
			}
			c.Logger().Debug("form query", "query", c.Request().Query)
			_ = c.HTML(http.StatusOK, "received your request!<br>"+id)
		}).
		Post(func(c *switchyard.Context, next switchyard.Next) {
			b := c.Body()
			c.Logger().Info("form body", "content_type", b.ContentType, "form", b.Form, "raw_bytes", len(b.Raw))
			_ = c.String(http.StatusOK, "received your request POST!")
		}).
		Err()
}

func hello(c *switchyard.Context, next switchyard.Next) {
	msg := "Hello Express!"
	if t, ok := switchyardhttp.RequestTime(c); ok {
		msg += fmt.Sprintf(" Requested at: %d", t.UnixMilli())
	}
	_ = c.String(http.StatusOK, msg)
	next(nil)
}

func helloWorld(c *switchyard.Context, next switchyard.Next) {
	_ = c.HTML(http.StatusOK, "Hello World!<br>"+c.Path())
}

func params(c *switchyard.Context, next switchyard.Next) {
	_ = c.JSON(http.StatusOK, c.Params())
}

func text(s string) switchyard.HandlerFunc {
	return func(c *switchyard.Context, next switchyard.Next) {
		_ = c.String(http.StatusOK, s)
	}
}

func logStep(msg string) switchyard.HandlerFunc {
	return func(c *switchyard.Context, next switchyard.Next) {
		c.Logger().Info(msg)
		next(nil)
	}
}
