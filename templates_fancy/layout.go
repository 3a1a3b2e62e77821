package templates

import (
	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"
)

type LayoutProps struct {
	Title       string
	CurrentUser string
}

func NavbarComponent(props LayoutProps) g.Node {
	return Nav(Class("nav"),
		Div(Class("nav-left"),
			Div(Class("brand"), A(Href("/"), g.Text(props.Title))),
		),
		Div(Class("nav-links nav-right"),
			g.If(props.CurrentUser == "",
				Div(
					A(Href("/signin"), g.Text("Sign in")),
					A(Href("/signup"), g.Text("Sign up")),
				),
			),
			g.If(props.CurrentUser != "",
				Div(Class("row"),
					Div(Class("col"), g.Textf("Signed in as %s", props.CurrentUser)),
					Div(Class("col"), A(Href("/profile/"+props.CurrentUser+"/"), g.Text("Profile"))),
				)),
		),
	)
}

func FooterComponent() g.Node {
	return Footer(Class("footer"),
		P(Class("with-love"),
			Small(I(g.Text("A quiet place to write."))),
		),
	)
}

func errorPage(props LayoutProps, heading, message string) g.Node {
	return HTML(Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			TitleEl(g.Text(heading+" | "+props.Title)),
			Link(Rel("stylesheet"), Href("/assets/style.css")),
		),
		Body(
			NavbarComponent(props),
			Main(Class("error-page"),
				H1(g.Text(heading)),
				P(g.Text(message)),
				P(A(Href("/"), g.Text("Back to the front page"))),
			),
			FooterComponent(),
		),
	)
}

func NotFoundPage(props LayoutProps) g.Node {
	return errorPage(props, "Page not found",
		"Whatever was here is gone, was never published, or never existed.")
}

func ServerErrorPage(props LayoutProps) g.Node {
	return errorPage(props, "Something went wrong",
		"The server tripped over itself. Try again in a moment.")
}
