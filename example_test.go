package wirehttp_test

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/adamwoolhether/wirehttp"
	"github.com/adamwoolhether/wirehttp/wire"
)

// Example demonstrates a one-off GET request with a caller-supplied
// receive buffer.
func Example() {
	client, err := wirehttp.Build()
	if err != nil {
		log.Fatal(err)
	}

	handle, err := client.Request(context.Background(), wire.GET, "http://example.com/status")
	if err != nil {
		log.Fatal(err)
	}
	defer handle.Close()

	rxBuf := make([]byte, 4096)
	resp, err := handle.Send(context.Background(), rxBuf)
	if err != nil {
		log.Fatal(err)
	}

	body, err := io.ReadAll(resp.Body())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(resp.StatusCode, string(body))
}

// ExampleClient_Resource issues several sequential requests against one
// endpoint over a single connection.
func ExampleClient_Resource() {
	client, err := wirehttp.Build(wirehttp.WithThrottle(10, 2))
	if err != nil {
		log.Fatal(err)
	}

	res, err := client.Resource(context.Background(), "http://api.example.com/v1")
	if err != nil {
		log.Fatal(err)
	}
	defer res.Close()

	rxBuf := make([]byte, 4096)

	resp, err := res.Post("/items").
		ContentType(wire.ApplicationJSON).
		Body(wire.Bytes([]byte(`{"name":"gopher"}`))).
		Send(context.Background(), rxBuf)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := io.Copy(io.Discard, resp.Body()); err != nil {
		log.Fatal(err)
	}

	// The connection is reusable once the prior body is drained.
	resp, err = res.Get("/items").Send(context.Background(), rxBuf)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(resp.StatusCode)
}

// ExampleWithTLS opts the client into https with fixed scratch buffers
// and a deterministic handshake seed.
func ExampleWithTLS() {
	cfg := wirehttp.NewTLSConfig(
		0x2b6a_4b2e_9f1c_55d7,
		make([]byte, 16*1024),
		make([]byte, 4*1024),
		wirehttp.TLSVerifyNone(),
	)

	client, err := wirehttp.Build(wirehttp.WithTLS(cfg))
	if err != nil {
		log.Fatal(err)
	}

	handle, err := client.Request(context.Background(), wire.GET, "https://example.com/")
	if err != nil {
		log.Fatal(err)
	}
	defer handle.Close()

	resp, err := handle.Send(context.Background(), make([]byte, 4096))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(resp.StatusCode)
}
