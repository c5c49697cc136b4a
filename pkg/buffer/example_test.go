package buffer_test

import (
	"fmt"
	"strings"

	"github.com/haivivi/netbuf/pkg/buffer"
)

func Example() {
	buf := buffer.New()

	buf.AppendString("hello")
	buf.PrependInt32(int32(buf.ReadableBytes()))

	n := buf.ReadInt32()
	s, _ := buf.RetrieveAsString(int(n))
	fmt.Println(n, s)
	// Output: 5 hello
}

func ExampleBuffer_FindCRLF() {
	buf := buffer.New()
	buf.ReadFrom(strings.NewReader("GET / HTTP/1.1\r\nHost: example.com\r\n\r\n"))

	for {
		end, ok := buf.FindCRLF()
		if !ok {
			break
		}
		line, _ := buf.RetrieveAsString(end - buf.ReaderIndex())
		buf.Retrieve(2)
		if line == "" {
			break
		}
		fmt.Println(line)
	}
	// Output:
	// GET / HTTP/1.1
	// Host: example.com
}

func ExampleBuffer_Shrink() {
	buf := buffer.New()
	buf.Append(make([]byte, 4000))
	buf.Retrieve(3990)
	buf.Shrink(0)

	fmt.Println(buf.ReadableBytes(), buf.WritableBytes(), buf.PrependableBytes())
	// Output: 10 1014 8
}
