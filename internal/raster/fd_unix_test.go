//go:build unix

package raster

import (
	"os"
	"reflect"
	"testing"
)

func TestFDChannelPipe(t *testing.T) {
	pr, pw, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer pr.Close()

	want := testHeader()
	errc := make(chan error, 1)
	go func() {
		defer pw.Close()
		s, err := OpenWriter(NewFDChannel(int(pw.Fd())))
		if err != nil {
			errc <- err
			return
		}
		errc <- s.WriteHeader(want)
	}()

	s, err := OpenReader(NewFDChannel(int(pr.Fd())))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	got, err := s.ReadHeader()
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if err := <-errc; err != nil {
		t.Fatalf("writer: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("header mismatch: got %+v", got)
	}

	// Writer side is closed: the next read sees end of stream.
	if _, err := s.ReadPixels(make([]byte, 1)); err == nil {
		t.Error("ReadPixels after writer closed: want error")
	}
}
